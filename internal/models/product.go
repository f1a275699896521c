package models

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

// Product represents a test kit in the catalog.
type Product struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(64)" validate:"required"`
	Name      string    `json:"name" validate:"required,min=3,max=100"`
	Category  string    `json:"category" validate:"required"`
	Price     float64   `json:"price" validate:"gte=0"`
	Goals     []string  `json:"goals" gorm:"-"`                           // Goal tags used by the filter
	GoalTags  string    `json:"-" gorm:"column:goals;type:varchar(255)"` // Comma separated, as stored
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}

// MatchesGoal reports whether the product is visible under goal.
func (p Product) MatchesGoal(goal Goal) bool {
	if goal == GoalAll {
		return true
	}
	for _, g := range p.Goals {
		if Goal(g) == goal {
			return true
		}
	}
	return false
}

// BeforeSave flattens the goal tags into their stored column.
func (p *Product) BeforeSave(tx *gorm.DB) error {
	p.GoalTags = strings.Join(p.Goals, ",")
	return nil
}

// AfterFind restores the goal tags from their stored column.
func (p *Product) AfterFind(tx *gorm.DB) error {
	p.Goals = ParseGoalTags(p.GoalTags)
	return nil
}

// ParseGoalTags splits a comma separated tag list, trimming blanks.
func ParseGoalTags(tags string) []string {
	goals := []string{}
	for _, g := range strings.Split(tags, ",") {
		if g = strings.TrimSpace(g); g != "" {
			goals = append(goals, g)
		}
	}
	return goals
}
