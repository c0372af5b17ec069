package species

// Category enum
type Category string

const (
	CategoryHuman  Category = "human"
	CategoryAnimal Category = "animal"
)

// Info is the display subject picked for a result.
type Info struct {
	Category       Category `json:"category" yaml:"category"`
	CommonName     string   `json:"common_name" yaml:"commonName"`
	ScientificName string   `json:"scientific_name" yaml:"scientificName"`
	ImageURL       string   `json:"image_url" yaml:"imageUrl"`
}

// IsAnimal reports whether the subject uses the animal section rules.
func (i Info) IsAnimal() bool { return i.Category == CategoryAnimal }

// Entry binds a catalog keyword pattern to a species.
type Entry struct {
	Keyword string `yaml:"keyword"`
	Info    `yaml:",inline"`
}

// SectionRule delimits one section: it starts at the first Start keyword and
// runs until the next Stop keyword or the end of the text.
type SectionRule struct {
	Start []string `yaml:"start"`
	Stop  []string `yaml:"stop"`
}

// SectionRules holds the three section rules of one category.
type SectionRules struct {
	Physical  SectionRule `yaml:"physical"`
	Nutrition SectionRule `yaml:"nutrition"`
	Health    SectionRule `yaml:"health"`
}
