package registry

// Category one registered trivia category
type Category struct {
	Slug string `json:"slug"`
	Code string `json:"code"`
}

// categories fixed category table, order is the display order
var categories = []Category{
	{Slug: "science", Code: "SCI"},
	{Slug: "history", Code: "HIST"},
	{Slug: "geography", Code: "GEO"},
	{Slug: "sports", Code: "SPRT"},
	{Slug: "entertainment", Code: "ENT"},
	{Slug: "literature", Code: "LIT"},
	{Slug: "music", Code: "MUS"},
	{Slug: "art", Code: "ART"},
	{Slug: "technology", Code: "TECH"},
	{Slug: "nature", Code: "NAT"},
}

var (
	slugToCode = make(map[string]string, len(categories))
	codeToSlug = make(map[string]string, len(categories))
)

func init() {
	for _, c := range categories {
		slugToCode[c.Slug] = c.Code
		codeToSlug[c.Code] = c.Slug
	}
}

// CategoryCount number of registered categories
const CategoryCount = 10

// Categories return all registered categories in display order
func Categories() []Category {
	out := make([]Category, len(categories))
	copy(out, categories)
	return out
}

// CategoryCode encode a category slug into its on-chain code
func CategoryCode(slug string) (string, error) {
	code, ok := slugToCode[slug]
	if !ok {
		return "", &RegistryError{Kind: KindCategory, Value: slug}
	}
	return code, nil
}

// CategorySlug decode an on-chain category code into its slug
func CategorySlug(code string) (string, error) {
	slug, ok := codeToSlug[code]
	if !ok {
		return "", &RegistryError{Kind: KindCategory, Value: code}
	}
	return slug, nil
}

// IsCategoryCode report whether code is a registered category code
func IsCategoryCode(code string) bool {
	_, ok := codeToSlug[code]
	return ok
}

// IsCategorySlug report whether slug is a registered category slug
func IsCategorySlug(slug string) bool {
	_, ok := slugToCode[slug]
	return ok
}
