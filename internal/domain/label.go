package domain

import "strings"

// FieldClass identifies which of the two monetary fields a label activates.
type FieldClass int

const (
	// DebitClass labels make the debit field ("montant") editable and force
	// the credit field ("avance") to zero.
	DebitClass FieldClass = iota
	// CreditClass labels make the credit field editable and force the debit
	// field to zero.
	CreditClass
)

// FreeTextLabel is the sentinel the operator selects to type a label by hand.
// Free-text labels are always debit-class.
const FreeTextLabel = "Autre"

type baseLabel struct {
	Name  string
	Class FieldClass
}

// vocabulary is the controlled label set. Declaration order matters:
// ClassifyStored resolves ambiguous prefix matches by taking the first entry
// that matches.
var vocabulary = []baseLabel{
	{"Honoraires reçus", CreditClass},
	{"Avance déclaration", CreditClass},
	{"CNSS", DebitClass},
	{"Impôts", DebitClass},
	{"TVA", DebitClass},
	{"Timbre fiscal", DebitClass},
	{"Déclaration employeur", DebitClass},
}

// BaseLabels returns the controlled vocabulary in declaration order, with the
// free-text sentinel appended.
func BaseLabels() []string {
	labels := make([]string, 0, len(vocabulary)+1)
	for _, b := range vocabulary {
		labels = append(labels, b.Name)
	}

	return append(labels, FreeTextLabel)
}

// Classify returns the field class of a selected base label. Unknown and
// free-text labels fall in the debit class.
func Classify(base string) FieldClass {
	for _, b := range vocabulary {
		if strings.EqualFold(b.Name, strings.TrimSpace(base)) {
			return b.Class
		}
	}

	return DebitClass
}

// BuildStoredLabel builds the label string persisted on a charge. When the
// operator chose the free-text sentinel the free text is stored verbatim;
// otherwise the suffix annotates the base label without leaving its class.
func BuildStoredLabel(base, freeText string) string {
	freeText = strings.TrimSpace(freeText)

	if base == FreeTextLabel {
		return freeText
	}

	if freeText == "" {
		return base
	}

	return base + " " + freeText
}

// ClassifyStored re-derives the field class from a stored label alone, for
// edit flows: the first vocabulary entry, in declaration order, that is a
// case-insensitive prefix of the label wins. No prefix match means free text,
// hence debit class.
func ClassifyStored(label string) FieldClass {
	lower := strings.ToLower(strings.TrimSpace(label))
	for _, b := range vocabulary {
		if strings.HasPrefix(lower, strings.ToLower(b.Name)) {
			return b.Class
		}
	}

	return DebitClass
}
