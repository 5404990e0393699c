package service

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/abdel2584/hisn-moslim-3/internal/model"
)

const (
	customIDPrefix     = "custom_"
	customSource       = "إضافة شخصية"
	MinCustomCount     = 1
	MaxCustomCount     = 100
	DefaultCustomCount = 3
	celebrateEvery     = 5
)

var ErrItemNotFound = errors.New("practice item not found")

type IncrementResult struct {
	Item      model.PracticeItem `json:"item"`
	Changed   bool               `json:"changed"`
	Completed bool               `json:"completed"`
	Celebrate bool               `json:"celebrate"`
}

type AddCustomInput struct {
	Text     string
	Count    int
	Category model.Category
}

// MergeCatalog reconciles stored progress with the built-in catalog. Stored
// progress wins for ids present in both (clamped to the catalog count);
// stored entries missing from the catalog survive only when user-added.
// Catalog order comes first, then user items in stored order.
func MergeCatalog(persisted, defaults []model.PracticeItem) []model.PracticeItem {
	byID := make(map[string]model.PracticeItem, len(persisted))
	for _, p := range persisted {
		byID[p.ID] = p
	}
	out := make([]model.PracticeItem, 0, len(defaults)+len(persisted))
	for _, d := range defaults {
		item := d
		if p, ok := byID[d.ID]; ok {
			item.CurrentCount = clampCount(p.CurrentCount, item.Count)
		}
		out = append(out, item)
	}
	for _, p := range persisted {
		if !p.IsUserAdded {
			continue
		}
		p.CurrentCount = clampCount(p.CurrentCount, p.Count)
		out = append(out, p)
	}
	return out
}

func clampCount(current, required int) int {
	if current < 0 {
		return 0
	}
	if current > required {
		return required
	}
	return current
}

func startedCount(items []model.PracticeItem) int {
	n := 0
	for _, it := range items {
		if it.CurrentCount > 0 {
			n++
		}
	}
	return n
}

func indexOfItem(items []model.PracticeItem, id string) int {
	for i := range items {
		if items[i].ID == id {
			return i
		}
	}
	return -1
}

// applyIncrement is the pure step behind IncrementPractice. The celebration
// check uses the started count as it stood when the tap arrived.
func applyIncrement(items []model.PracticeItem, id string) ([]model.PracticeItem, IncrementResult, error) {
	i := indexOfItem(items, id)
	if i < 0 {
		return items, IncrementResult{}, fmt.Errorf("%w: %q", ErrItemNotFound, id)
	}
	item := items[i]
	if item.CurrentCount >= item.Count {
		return items, IncrementResult{Item: item, Completed: true}, nil
	}
	started := startedCount(items)
	next := make([]model.PracticeItem, len(items))
	copy(next, items)
	item.CurrentCount++
	next[i] = item

	res := IncrementResult{Item: item, Changed: true}
	if item.CurrentCount == item.Count {
		res.Completed = true
		res.Celebrate = started%celebrateEvery == 0
	}
	return next, res, nil
}

func applyReset(items []model.PracticeItem, id string) ([]model.PracticeItem, error) {
	i := indexOfItem(items, id)
	if i < 0 {
		return items, fmt.Errorf("%w: %q", ErrItemNotFound, id)
	}
	next := make([]model.PracticeItem, len(items))
	copy(next, items)
	next[i].CurrentCount = 0
	return next, nil
}

// newCustomItem returns ok=false for blank text; that is a silent rejection,
// not an error.
func newCustomItem(in AddCustomInput) (model.PracticeItem, bool, error) {
	if strings.TrimSpace(in.Text) == "" {
		return model.PracticeItem{}, false, nil
	}
	if !in.Category.Valid() {
		return model.PracticeItem{}, false, fmt.Errorf("unknown category %q", in.Category)
	}
	count := in.Count
	if count == 0 {
		count = DefaultCustomCount
	}
	if count < MinCustomCount || count > MaxCustomCount {
		return model.PracticeItem{}, false, fmt.Errorf("count must be between %d and %d", MinCustomCount, MaxCustomCount)
	}
	id, err := uuid.NewV7()
	if err != nil {
		return model.PracticeItem{}, false, fmt.Errorf("generate item id: %w", err)
	}
	return model.PracticeItem{
		ID:          customIDPrefix + id.String(),
		Text:        in.Text,
		Count:       count,
		Source:      customSource,
		Category:    in.Category,
		IsUserAdded: true,
	}, true, nil
}

func ListPractice(db *sql.DB, category model.Category) ([]model.PracticeItem, error) {
	items, err := LoadPracticeItems(db)
	if err != nil {
		return nil, err
	}
	if category == "" {
		return items, nil
	}
	out := make([]model.PracticeItem, 0, len(items))
	for _, it := range items {
		if it.Category == category {
			out = append(out, it)
		}
	}
	return out, nil
}

func IncrementPractice(db *sql.DB, id string, now time.Time) (IncrementResult, error) {
	items, err := LoadPracticeItems(db)
	if err != nil {
		return IncrementResult{}, err
	}
	next, res, err := applyIncrement(items, strings.TrimSpace(id))
	if err != nil || !res.Changed {
		return res, err
	}
	if err := commitPractice(db, next, now); err != nil {
		return IncrementResult{}, err
	}
	return res, nil
}

func ResetPractice(db *sql.DB, id string, now time.Time) error {
	items, err := LoadPracticeItems(db)
	if err != nil {
		return err
	}
	next, err := applyReset(items, strings.TrimSpace(id))
	if err != nil {
		return err
	}
	return commitPractice(db, next, now)
}

// ResetAllPractice zeroes every counter, e.g. at the start of a new day.
func ResetAllPractice(db *sql.DB, now time.Time) error {
	items, err := LoadPracticeItems(db)
	if err != nil {
		return err
	}
	for i := range items {
		items[i].CurrentCount = 0
	}
	return commitPractice(db, items, now)
}

func AddCustomPractice(db *sql.DB, in AddCustomInput, now time.Time) (model.PracticeItem, bool, error) {
	item, ok, err := newCustomItem(in)
	if err != nil || !ok {
		return model.PracticeItem{}, false, err
	}
	items, err := LoadPracticeItems(db)
	if err != nil {
		return model.PracticeItem{}, false, err
	}
	items = append(items, item)
	if err := commitPractice(db, items, now); err != nil {
		return model.PracticeItem{}, false, err
	}
	return item, true, nil
}

// commitPractice persists the list and re-derives today's percentage from it.
func commitPractice(db *sql.DB, items []model.PracticeItem, now time.Time) error {
	if err := SavePracticeItems(db, items); err != nil {
		return err
	}
	_, err := RefreshDailyProgress(db, items, now)
	return err
}
