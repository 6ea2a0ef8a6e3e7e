// Package store holds the meals of one user for the currently viewed date
// and mediates every add, update and remove against the data gateway.
//
// Mutations are not serialized. Two overlapping mutations each compute
// their own total delta from the snapshot they read, and the last
// reconciling fetch to finish decides what is shown.
package store

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/pageza/mealtrack/backend/internal/gateway"
	"github.com/pageza/mealtrack/backend/internal/models"
	"github.com/pageza/mealtrack/backend/internal/nutrition"
)

var (
	ErrFoodNotFound     = errors.New("food not found")
	ErrMealItemNotFound = errors.New("meal item not found")
	ErrInvalidQuantity  = errors.New("quantity must be a positive number of grams")
	ErrInvalidSlot      = errors.New("meal type must be breakfast, lunch, dinner or snack")
)

// Snapshot is an immutable view of the store.
type Snapshot struct {
	Meals       []models.Meal `json:"meals"`
	CurrentDate time.Time     `json:"current_date"`
	Loading     bool          `json:"loading"`
	Busy        bool          `json:"busy"`
}

// Listener is called after every state change.
type Listener func(Snapshot)

// MealStore is the nutrition aggregation store. The meals slice is only ever
// replaced, never modified in place.
type MealStore struct {
	gw       gateway.DataGateway
	notifier Notifier
	log      logrus.FieldLogger
	now      func() time.Time

	mu          sync.RWMutex
	meals       []models.Meal
	currentDate time.Time
	userID      uuid.UUID
	loading     bool
	inFlight    int
	listeners   map[int]Listener
	nextID      int
}

// New returns an empty store whose current date is today.
func New(gw gateway.DataGateway, notifier Notifier, log logrus.FieldLogger) *MealStore {
	if notifier == nil {
		notifier = LogNotifier{Log: log}
	}
	s := &MealStore{
		gw:        gw,
		notifier:  notifier,
		log:       log,
		now:       time.Now,
		meals:     []models.Meal{},
		listeners: make(map[int]Listener),
	}
	s.currentDate = Day(s.now())
	return s
}

// Day truncates t to its calendar date.
func Day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a YYYY-MM-DD date.
func ParseDate(s string) (time.Time, error) {
	return time.Parse(models.DateLayout, s)
}

// SetCurrentDate changes the viewed date. It does not fetch.
func (s *MealStore) SetCurrentDate(date time.Time) {
	s.update(func() { s.currentDate = Day(date) })
}

// FetchMeals replaces the loaded meals with the user's meals for date. On
// failure the loaded meals become empty.
func (s *MealStore) FetchMeals(ctx context.Context, date time.Time, userID uuid.UUID) error {
	s.update(func() { s.loading = true })

	meals, err := s.gw.QueryMeals(ctx, userID, Day(date))

	s.update(func() {
		s.loading = false
		s.userID = userID
		if err != nil || meals == nil {
			s.meals = []models.Meal{}
			return
		}
		s.meals = meals
	})

	if err != nil {
		s.fail(userID, "Could not load your meals.", err, logrus.Fields{"date": date.Format(models.DateLayout)})
		return fmt.Errorf("fetch meals: %w", err)
	}
	return nil
}

// AddMealItem adds quantity grams of a food to the user's slot on the
// current date, creating the slot's meal if needed.
func (s *MealStore) AddMealItem(ctx context.Context, slot models.MealType, foodID uuid.UUID, quantity int, userID uuid.UUID) error {
	if !slot.IsValid() {
		return ErrInvalidSlot
	}
	if quantity <= 0 {
		return ErrInvalidQuantity
	}

	s.begin()
	defer s.end()

	food, err := s.gw.GetFood(ctx, foodID)
	if err != nil {
		if errors.Is(err, gateway.ErrNotFound) {
			err = ErrFoodNotFound
		}
		s.fail(userID, "That food could not be found.", err, logrus.Fields{"food_id": foodID})
		return err
	}
	calories := nutrition.Calories(food.CaloriesPer100g, quantity)

	s.mu.RLock()
	date := s.currentDate
	var existing *models.Meal
	if s.userID == userID {
		if m := findMeal(s.meals, slot); m != nil && m.Date == date.Format(models.DateLayout) {
			existing = m
		}
	}
	s.mu.RUnlock()

	var (
		mealID   uuid.UUID
		previous int
	)
	if existing != nil {
		if _, err := s.gw.UpdateMealTotal(ctx, existing.ID, existing.TotalCalories+calories); err != nil {
			s.fail(userID, "Could not add the food.", err, logrus.Fields{"meal_id": existing.ID})
			return fmt.Errorf("update meal total: %w", err)
		}
		mealID, previous = existing.ID, existing.TotalCalories
	} else {
		meal, err := s.gw.CreateMeal(ctx, userID, date, slot, calories)
		if err != nil {
			s.fail(userID, "Could not add the food.", err, logrus.Fields{"meal_type": slot})
			return fmt.Errorf("create meal: %w", err)
		}
		mealID = meal.ID
	}

	item, err := s.gw.InsertMealItem(ctx, mealID, foodID, quantity, calories)
	if err != nil {
		s.restoreTotal(ctx, mealID, previous)
		s.fail(userID, "Could not add the food.", err, logrus.Fields{"meal_id": mealID})
		return fmt.Errorf("insert meal item: %w", err)
	}
	item.Food = food

	s.update(func() { s.meals = withItemAdded(s.meals, mealID, userID, date, slot, *item) })

	s.reconcile(ctx, date, userID, "Food added.")
	return nil
}

// RemoveMealItem deletes an item and lowers its meal's total, never below zero.
func (s *MealStore) RemoveMealItem(ctx context.Context, itemID uuid.UUID) error {
	s.begin()
	defer s.end()

	meal, item, date, userID, ok := s.locate(itemID)
	if !ok {
		s.fail(userID, "That item no longer exists.", ErrMealItemNotFound, logrus.Fields{"item_id": itemID})
		return ErrMealItemNotFound
	}

	if err := s.gw.DeleteMealItem(ctx, itemID); err != nil {
		if errors.Is(err, gateway.ErrNotFound) {
			err = ErrMealItemNotFound
		}
		s.fail(userID, "Could not remove the item.", err, logrus.Fields{"item_id": itemID})
		return err
	}

	total := floorZero(meal.TotalCalories - item.Calories)
	if _, err := s.gw.UpdateMealTotal(ctx, meal.ID, total); err != nil {
		s.fail(userID, "Could not remove the item.", err, logrus.Fields{"meal_id": meal.ID})
		return fmt.Errorf("update meal total: %w", err)
	}

	s.update(func() { s.meals = withItemRemoved(s.meals, meal.ID, itemID, total) })

	s.reconcile(ctx, date, userID, "Item removed.")
	return nil
}

// UpdateMealItem changes an item's quantity, recomputing its calories and
// adjusting the meal total by the difference, never below zero.
func (s *MealStore) UpdateMealItem(ctx context.Context, itemID uuid.UUID, quantity int) error {
	if quantity <= 0 {
		return ErrInvalidQuantity
	}

	s.begin()
	defer s.end()

	meal, item, date, userID, ok := s.locate(itemID)
	if !ok {
		s.fail(userID, "That item no longer exists.", ErrMealItemNotFound, logrus.Fields{"item_id": itemID})
		return ErrMealItemNotFound
	}

	food := item.Food
	if food == nil {
		f, err := s.gw.GetFood(ctx, item.FoodID)
		if err != nil {
			if errors.Is(err, gateway.ErrNotFound) {
				err = ErrFoodNotFound
			}
			s.fail(userID, "That food could not be found.", err, logrus.Fields{"food_id": item.FoodID})
			return err
		}
		food = f
	}

	calories := nutrition.Calories(food.CaloriesPer100g, quantity)
	delta := calories - item.Calories

	updated, err := s.gw.UpdateMealItem(ctx, itemID, quantity, calories)
	if err != nil {
		if errors.Is(err, gateway.ErrNotFound) {
			err = ErrMealItemNotFound
		}
		s.fail(userID, "Could not update the item.", err, logrus.Fields{"item_id": itemID})
		return err
	}

	total := floorZero(meal.TotalCalories + delta)
	if _, err := s.gw.UpdateMealTotal(ctx, meal.ID, total); err != nil {
		s.fail(userID, "Could not update the item.", err, logrus.Fields{"meal_id": meal.ID})
		return fmt.Errorf("update meal total: %w", err)
	}

	patched := *item
	patched.Quantity = updated.Quantity
	patched.Calories = updated.Calories
	patched.Food = food
	s.update(func() { s.meals = withItemReplaced(s.meals, meal.ID, patched, total) })

	s.reconcile(ctx, date, userID, "Item updated.")
	return nil
}

// reconcile reports a committed write and refetches. A failed refetch
// empties the meals and sends its own error notification; the write stands.
func (s *MealStore) reconcile(ctx context.Context, date time.Time, userID uuid.UUID, message string) {
	s.notify(userID, LevelSuccess, message)
	_ = s.FetchMeals(ctx, date, userID)
}

// restoreTotal puts back a meal total written ahead of a failed item insert.
func (s *MealStore) restoreTotal(ctx context.Context, mealID uuid.UUID, total int) {
	if _, err := s.gw.UpdateMealTotal(ctx, mealID, total); err != nil {
		s.log.WithError(err).WithField("meal_id", mealID).Warn("meal total no longer matches its items")
	}
}

// TotalCalories sums the calories of every loaded item.
func (s *MealStore) TotalCalories() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	total := 0
	for _, meal := range s.meals {
		total += meal.ItemCalories()
	}
	return total
}

// Totals sums calories and macros of every loaded item.
func (s *MealStore) Totals() nutrition.Macros {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return nutrition.Totals(s.meals)
}

// MealByType returns the loaded meal for slot.
func (s *MealStore) MealByType(slot models.MealType) (*models.Meal, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m := findMeal(s.meals, slot)
	return m, m != nil
}

// Meals returns the loaded meals.
func (s *MealStore) Meals() []models.Meal {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.Meal(nil), s.meals...)
}

// CurrentDate returns the viewed date.
func (s *MealStore) CurrentDate() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.currentDate
}

// Loading reports whether a fetch is in flight.
func (s *MealStore) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

// Busy reports whether a fetch or mutation is in flight. Callers use it to
// reject duplicate submissions.
func (s *MealStore) Busy() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading || s.inFlight > 0
}

// Snapshot returns the current state.
func (s *MealStore) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

func (s *MealStore) snapshotLocked() Snapshot {
	return Snapshot{
		Meals:       s.meals,
		CurrentDate: s.currentDate,
		Loading:     s.loading,
		Busy:        s.loading || s.inFlight > 0,
	}
}

// Subscribe registers l and returns a function that removes it.
func (s *MealStore) Subscribe(l Listener) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = l
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}

func (s *MealStore) begin() {
	s.update(func() { s.inFlight++ })
}

func (s *MealStore) end() {
	s.update(func() { s.inFlight-- })
}

// locate finds an item among the loaded meals.
func (s *MealStore) locate(itemID uuid.UUID) (*models.Meal, *models.MealItem, time.Time, uuid.UUID, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := range s.meals {
		for j := range s.meals[i].MealItems {
			if s.meals[i].MealItems[j].ID == itemID {
				meal := s.meals[i]
				item := meal.MealItems[j]
				return &meal, &item, s.currentDate, s.userID, true
			}
		}
	}
	return nil, nil, s.currentDate, s.userID, false
}

func (s *MealStore) fail(userID uuid.UUID, message string, err error, fields logrus.Fields) {
	s.log.WithError(err).WithFields(fields).WithField("user_id", userID).Error(message)
	s.notify(userID, LevelError, message)
}

func (s *MealStore) notify(userID uuid.UUID, level Level, message string) {
	s.notifier.Notify(Notification{Level: level, Message: message, UserID: userID, At: s.now()})
}

// update applies fn under the lock, then notifies listeners outside it.
func (s *MealStore) update(fn func()) {
	s.mu.Lock()
	fn()
	snap := s.snapshotLocked()
	listeners := make([]Listener, 0, len(s.listeners))
	for _, l := range s.listeners {
		listeners = append(listeners, l)
	}
	s.mu.Unlock()

	for _, l := range listeners {
		l(snap)
	}
}

func findMeal(meals []models.Meal, slot models.MealType) *models.Meal {
	for i := range meals {
		if meals[i].MealType == slot {
			m := meals[i]
			return &m
		}
	}
	return nil
}

func floorZero(n int) int {
	if n < 0 {
		return 0
	}
	return n
}

func withItemAdded(meals []models.Meal, mealID, userID uuid.UUID, date time.Time, slot models.MealType, item models.MealItem) []models.Meal {
	out := make([]models.Meal, 0, len(meals)+1)
	found := false
	for _, m := range meals {
		if m.ID == mealID {
			items := make([]models.MealItem, 0, len(m.MealItems)+1)
			items = append(items, m.MealItems...)
			m.MealItems = append(items, item)
			m.TotalCalories += item.Calories
			found = true
		}
		out = append(out, m)
	}
	if !found {
		out = append(out, models.Meal{
			ID:            mealID,
			UserID:        userID,
			Date:          date.Format(models.DateLayout),
			MealType:      slot,
			TotalCalories: item.Calories,
			MealItems:     []models.MealItem{item},
		})
	}
	return out
}

func withItemRemoved(meals []models.Meal, mealID, itemID uuid.UUID, total int) []models.Meal {
	out := make([]models.Meal, 0, len(meals))
	for _, m := range meals {
		if m.ID == mealID {
			items := make([]models.MealItem, 0, len(m.MealItems))
			for _, it := range m.MealItems {
				if it.ID != itemID {
					items = append(items, it)
				}
			}
			m.MealItems = items
			m.TotalCalories = total
		}
		out = append(out, m)
	}
	return out
}

func withItemReplaced(meals []models.Meal, mealID uuid.UUID, item models.MealItem, total int) []models.Meal {
	out := make([]models.Meal, 0, len(meals))
	for _, m := range meals {
		if m.ID == mealID {
			items := make([]models.MealItem, len(m.MealItems))
			for i, it := range m.MealItems {
				if it.ID == item.ID {
					it = item
				}
				items[i] = it
			}
			m.MealItems = items
			m.TotalCalories = total
		}
		out = append(out, m)
	}
	return out
}
