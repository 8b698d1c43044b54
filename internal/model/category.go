package model

// Category identifies a keyword class assigned by annotators
type Category int

const (
	InformationModel Category = iota // Information-model entities (IM keywords)
	Relational                       // Relations between entities
	Constraint                       // Constraint / modality keywords
	Quotation                        // Quoted literals
	Numeric                          // Numbers and quantities
	NotIncluded                      // Seen in the text but not tagged to any tracked category
)

// TrackedCategoryCount is the number of annotated keyword columns per sentence
const TrackedCategoryCount = 5

// TrackedCategories lists the five annotated categories in column order
var TrackedCategories = [TrackedCategoryCount]Category{
	InformationModel,
	Relational,
	Constraint,
	Quotation,
	Numeric,
}

// AllCategories lists every category including the synthetic not_included bucket
var AllCategories = []Category{
	InformationModel,
	Relational,
	Constraint,
	Quotation,
	Numeric,
	NotIncluded,
}

func (c Category) String() string {
	switch c {
	case InformationModel:
		return "information_model"
	case Relational:
		return "relational"
	case Constraint:
		return "constraint"
	case Quotation:
		return "quotation"
	case Numeric:
		return "numeric"
	case NotIncluded:
		return "not_included"
	default:
		return "unknown"
	}
}

// Title returns the label used in chart titles
func (c Category) Title() string {
	switch c {
	case InformationModel:
		return "IM keywords"
	case Relational:
		return "Relation keywords"
	case Constraint:
		return "Constraint keywords"
	case Quotation:
		return "Quote keywords"
	case Numeric:
		return "Numbers keywords"
	case NotIncluded:
		return "Not included"
	default:
		return "Unknown"
	}
}

// Entity returns the name used for the category on the distribution command line
// and in heatmap file names
func (c Category) Entity() string {
	switch c {
	case InformationModel:
		return "information_model"
	case Relational:
		return "relation"
	case Constraint:
		return "constraint"
	case Quotation:
		return "quotes"
	case Numeric:
		return "number"
	default:
		return c.String()
	}
}

// MarshalText encodes the category by name
func (c Category) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// ParseCategory resolves a category name, accepting the entity aliases used on the command line
func ParseCategory(name string) (Category, bool) {
	switch name {
	case "information_model", "im":
		return InformationModel, true
	case "relational", "relation":
		return Relational, true
	case "constraint":
		return Constraint, true
	case "quotation", "quotes", "quote":
		return Quotation, true
	case "numeric", "number", "numbers":
		return Numeric, true
	case "not_included":
		return NotIncluded, true
	default:
		return 0, false
	}
}
