// Package i18n resolves the visitor language and renders wizard messages in
// Italian, English, French or German.
package i18n

import (
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

// MessageID identifies a translatable message.
type MessageID string

// Messages used by the simulator, the wizard and the HTTP layer.
const (
	Required             MessageID = "required"
	InvalidName          MessageID = "invalid_name"
	InvalidEmail         MessageID = "invalid_email"
	InvalidPhone         MessageID = "invalid_phone"
	InvalidAreaCode      MessageID = "invalid_area_code"
	InvalidPhoneType     MessageID = "invalid_phone_type"
	InvalidSwissPostal   MessageID = "invalid_swiss_postal_code"
	InvalidPostal        MessageID = "invalid_postal_code"
	InvalidDate          MessageID = "invalid_date"
	AgeOutOfRange        MessageID = "age_out_of_range"
	InvalidChoice        MessageID = "invalid_choice"
	InvalidNumber        MessageID = "invalid_number"
	NumberOutOfRange     MessageID = "number_out_of_range"
	DocumentMissing      MessageID = "document_missing"
	DocumentTooLarge     MessageID = "document_too_large"
	DocumentNotPDF       MessageID = "document_not_pdf"
	SubmissionFailed     MessageID = "submission_failed"
	SimulationOutOfRange MessageID = "simulation_out_of_range"
	LoanDescription      MessageID = "loan_description"
)

// Supported lists the site languages, default first.
var Supported = []language.Tag{
	language.Italian,
	language.English,
	language.French,
	language.German,
}

// Default is used when nothing in the request matches.
var Default = language.Italian

var (
	matcher = language.NewMatcher(Supported)
	cat     = buildCatalog()
)

var translations = map[MessageID][4]string{
	Required: {
		"Campo obbligatorio",
		"This field is required",
		"Ce champ est obligatoire",
		"Dieses Feld ist erforderlich",
	},
	InvalidName: {
		"Inserire almeno 2 lettere (ammessi spazi, trattini e apostrofi)",
		"Enter at least 2 letters (spaces, hyphens and apostrophes allowed)",
		"Saisissez au moins 2 lettres (espaces, traits d'union et apostrophes autorisés)",
		"Mindestens 2 Buchstaben eingeben (Leerzeichen, Bindestriche und Apostrophe erlaubt)",
	},
	InvalidEmail: {
		"Indirizzo e-mail non valido",
		"Invalid e-mail address",
		"Adresse e-mail invalide",
		"Ungültige E-Mail-Adresse",
	},
	InvalidPhone: {
		"Il numero deve contenere da %d a %d cifre",
		"The number must contain %d to %d digits",
		"Le numéro doit contenir de %d à %d chiffres",
		"Die Nummer muss %d bis %d Ziffern enthalten",
	},
	InvalidAreaCode: {
		"Prefisso non valido",
		"Invalid area code",
		"Indicatif invalide",
		"Ungültige Vorwahl",
	},
	InvalidPhoneType: {
		"Tipo di telefono non valido",
		"Invalid phone type",
		"Type de téléphone invalide",
		"Ungültiger Telefontyp",
	},
	InvalidSwissPostal: {
		"Il NPA svizzero deve avere 4 cifre",
		"Swiss postal codes have 4 digits",
		"Le NPA suisse doit comporter 4 chiffres",
		"Schweizer PLZ haben 4 Ziffern",
	},
	InvalidPostal: {
		"Il codice postale deve avere da 3 a 10 caratteri alfanumerici",
		"The postal code must have 3 to 10 alphanumeric characters",
		"Le code postal doit comporter de 3 à 10 caractères alphanumériques",
		"Die Postleitzahl muss 3 bis 10 alphanumerische Zeichen haben",
	},
	InvalidDate: {
		"Data non valida",
		"Invalid date",
		"Date invalide",
		"Ungültiges Datum",
	},
	AgeOutOfRange: {
		"Il richiedente deve avere tra %d e %d anni",
		"The applicant must be between %d and %d years old",
		"Le demandeur doit avoir entre %d et %d ans",
		"Die antragstellende Person muss zwischen %d und %d Jahre alt sein",
	},
	InvalidChoice: {
		"Selezionare un'opzione valida",
		"Select a valid option",
		"Sélectionnez une option valide",
		"Bitte eine gültige Option wählen",
	},
	InvalidNumber: {
		"Inserire un numero valido",
		"Enter a valid number",
		"Saisissez un nombre valide",
		"Bitte eine gültige Zahl eingeben",
	},
	NumberOutOfRange: {
		"Il valore deve essere compreso tra %v e %v",
		"The value must be between %v and %v",
		"La valeur doit être comprise entre %v et %v",
		"Der Wert muss zwischen %v und %v liegen",
	},
	DocumentMissing: {
		"Documento obbligatorio mancante: %s",
		"Required document missing: %s",
		"Document obligatoire manquant : %s",
		"Erforderliches Dokument fehlt: %s",
	},
	DocumentTooLarge: {
		"Il file supera la dimensione massima di %d MB",
		"The file exceeds the maximum size of %d MB",
		"Le fichier dépasse la taille maximale de %d Mo",
		"Die Datei überschreitet die maximale Größe von %d MB",
	},
	DocumentNotPDF: {
		"Sono accettati solo file PDF",
		"Only PDF files are accepted",
		"Seuls les fichiers PDF sont acceptés",
		"Es werden nur PDF-Dateien akzeptiert",
	},
	SubmissionFailed: {
		"Si è verificato un errore durante l'invio della richiesta. Riprovare più tardi.",
		"An error occurred while sending your request. Please try again later.",
		"Une erreur s'est produite lors de l'envoi de votre demande. Veuillez réessayer plus tard.",
		"Beim Senden Ihrer Anfrage ist ein Fehler aufgetreten. Bitte versuchen Sie es später erneut.",
	},
	SimulationOutOfRange: {
		"Importo o durata fuori dai limiti consentiti",
		"Amount or duration outside the allowed limits",
		"Montant ou durée hors des limites autorisées",
		"Betrag oder Laufzeit ausserhalb der zulässigen Grenzen",
	},
	LoanDescription: {
		"Richiesta di credito privato di %s per %d mesi. Commenti: %s",
		"Personal loan request of %s over %d months. Comments: %s",
		"Demande de crédit privé de %s sur %d mois. Commentaires : %s",
		"Anfrage Privatkredit über %s für %d Monate. Bemerkungen: %s",
	},
}

func buildCatalog() *catalog.Builder {
	b := catalog.NewBuilder(catalog.Fallback(Default))
	for id, texts := range translations {
		for i, tag := range Supported {
			if err := b.SetString(tag, string(id), texts[i]); err != nil {
				panic(err)
			}
		}
	}
	return b
}

// Localizer renders messages for one language.
type Localizer struct {
	tag     language.Tag
	printer *message.Printer
}

// New returns a Localizer for the supported language closest to tag.
func New(tag language.Tag) *Localizer {
	_, idx, _ := matcher.Match(tag)
	resolved := Supported[idx]
	return &Localizer{
		tag:     resolved,
		printer: message.NewPrinter(resolved, message.Catalog(cat)),
	}
}

// Match resolves Accept-Language style preferences (first non-empty wins the
// parse, the matcher picks the best supported tag).
func Match(preferences ...string) *Localizer {
	for _, pref := range preferences {
		if strings.TrimSpace(pref) == "" {
			continue
		}
		tags, _, err := language.ParseAcceptLanguage(pref)
		if err != nil || len(tags) == 0 {
			continue
		}
		_, idx, confidence := matcher.Match(tags...)
		if confidence == language.No {
			continue
		}
		return New(Supported[idx])
	}
	return New(Default)
}

// Text renders the message in the localizer language.
func (l *Localizer) Text(id MessageID, args ...interface{}) string {
	return l.printer.Sprintf(string(id), args...)
}

// Language returns the ISO 639-1 code of the resolved language.
func (l *Localizer) Language() string {
	base, _ := l.tag.Base()
	return base.String()
}

// Tag returns the resolved language tag.
func (l *Localizer) Tag() language.Tag {
	return l.tag
}
