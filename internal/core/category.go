package core

import (
	"encoding/json"
	"strings"
)

// OtherLabel buckets transactions recorded without a category.
const OtherLabel = "Other"

// CategoryCode is the closed set of curated categories. Anything a user types
// that is not curated becomes CategoryCustom and keeps its label.
type CategoryCode int

const (
	CategoryNone CategoryCode = iota
	CategoryCommunication
	CategoryFood
	CategoryCafe
	CategoryTransport
	CategoryTaxi
	CategoryHygiene
	CategoryPets
	CategoryClothes
	CategoryGifts
	CategorySport
	CategoryHealth
	CategoryGames
	CategoryEntertainment
	CategoryHousing
	CategorySalary
	CategoryPresent
	CategorySavings
	CategoryCustom
)

type curated struct {
	code    CategoryCode
	label   string
	emoji   string
	income  bool
	aliases []string
}

// Ordering matches the suggestion lists shown when recording a transaction.
var curatedCategories = []curated{
	{CategoryCommunication, "Зв'язок", "📞", false, []string{"communication", "phone", "телефон", "комунікації"}},
	{CategoryFood, "Їжа", "🛒", false, []string{"food", "groceries", "продукти"}},
	{CategoryCafe, "Кафе", "🍽️", false, []string{"cafe", "restaurant"}},
	{CategoryTransport, "Транспорт", "🚗", false, []string{"transport", "car", "машина"}},
	{CategoryTaxi, "Таксі", "🚕", false, []string{"taxi"}},
	{CategoryHygiene, "Гігієна", "🧴", false, []string{"hygiene", "особиста гігієна"}},
	{CategoryPets, "Улюбленці", "🐱", false, []string{"pets", "тварини", "петс"}},
	{CategoryClothes, "Одяг", "👕", false, []string{"clothes"}},
	{CategoryGifts, "Подарунки", "🎁", false, []string{"gifts"}},
	{CategorySport, "Спорт", "⚽", false, []string{"sport", "фітнес"}},
	{CategoryHealth, "Здоров'я", "🏥", false, []string{"health", "медицина"}},
	{CategoryGames, "Ігри", "🎮", false, []string{"games"}},
	{CategoryEntertainment, "Розваги", "🍺", false, []string{"entertainment", "fun"}},
	{CategoryHousing, "Житло", "🏠", false, []string{"housing", "rent", "будинок"}},
	{CategorySalary, "Зарплата", "💰", true, []string{"salary", "дохід"}},
	{CategoryPresent, "Подарунок", "🎁", true, []string{"present"}},
	{CategorySavings, "Заощадження", "🏦", true, []string{"savings"}},
}

var curatedIndex = func() map[string]int {
	idx := make(map[string]int)
	for i, c := range curatedCategories {
		idx[strings.ToLower(c.label)] = i
		for _, a := range c.aliases {
			idx[strings.ToLower(a)] = i
		}
	}
	return idx
}()

// Category is either absent, a curated category, or a custom free-text label.
type Category struct {
	code  CategoryCode
	label string
}

// NewCategory classifies a user-entered label. Blank input yields an absent category.
func NewCategory(label string) Category {
	label = strings.TrimSpace(label)
	if label == "" {
		return Category{}
	}
	if i, ok := curatedIndex[strings.ToLower(label)]; ok {
		return Category{code: curatedCategories[i].code, label: label}
	}
	return Category{code: CategoryCustom, label: label}
}

func (c Category) Code() CategoryCode { return c.code }

// IsAbsent reports whether no category was recorded.
func (c Category) IsAbsent() bool { return c.code == CategoryNone }

// Label returns the label as recorded, or OtherLabel when absent.
func (c Category) Label() string {
	if c.IsAbsent() {
		return OtherLabel
	}
	return c.label
}

// Emoji returns the curated icon, or a generic chart icon.
func (c Category) Emoji() string {
	if c.code != CategoryNone && c.code != CategoryCustom {
		for _, cur := range curatedCategories {
			if cur.code == c.code {
				return cur.emoji
			}
		}
	}
	return "📊"
}

func (c Category) String() string { return c.Label() }

func (c Category) MarshalJSON() ([]byte, error) {
	if c.IsAbsent() {
		return []byte("null"), nil
	}
	return json.Marshal(c.label)
}

func (c *Category) UnmarshalJSON(data []byte) error {
	var s *string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s == nil {
		*c = Category{}
		return nil
	}
	*c = NewCategory(*s)
	return nil
}

// SuggestedCategories returns the curated labels for the given kind.
func SuggestedCategories(kind Kind) []string {
	out := make([]string, 0, len(curatedCategories))
	for _, c := range curatedCategories {
		if c.income == (kind == KindIncome) {
			out = append(out, c.label)
		}
	}
	return out
}
