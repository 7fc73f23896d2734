package model

import "time"

// Picks maps a category name to the chosen pick key.
type Picks map[string]string

// Winners maps a category name to the winning pick key.
type Winners map[string]string

// Filled counts categories with a non-empty pick.
func (p Picks) Filled() int {
	n := 0
	for _, v := range p {
		if v != "" {
			n++
		}
	}
	return n
}

// Clone returns a copy that can be mutated independently.
func (p Picks) Clone() Picks {
	out := make(Picks, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

func (w Winners) Clone() Winners {
	out := make(Winners, len(w))
	for k, v := range w {
		out[k] = v
	}
	return out
}

type Ballot struct {
	ID          string     `json:"id"`
	UserID      string     `json:"user_id"`
	UserName    string     `json:"user_name"`
	Picks       Picks      `json:"picks"`
	CreatedAt   time.Time  `json:"created_at"`
	SubmittedAt *time.Time `json:"submitted_at,omitempty"`
}

// Submitted reports whether the ballot reached its terminal state.
func (b Ballot) Submitted() bool { return b.SubmittedAt != nil }

type Settings struct {
	BallotsLocked bool      `json:"ballots_locked"`
	Version       int64     `json:"version"`
	UpdatedAt     time.Time `json:"updated_at,omitempty"`
}

type Group struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"-"`
	CreatedBy    string    `json:"created_by"`
	CreatedAt    time.Time `json:"created_at"`
}

// GroupSummary is the public view of a group; it never carries the password.
type GroupSummary struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type RankedEntry struct {
	Rank        int       `json:"rank"`
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	Name        string    `json:"name"`
	SubmittedAt time.Time `json:"submitted_at"`
	// Score is nil while no winner has been announced.
	Score       *int `json:"score"`
	TotalPicked int  `json:"total_picked"`
}

type Leaderboard struct {
	Ranked          []RankedEntry `json:"ranked"`
	Total           int           `json:"total"`
	WinnersKnown    bool          `json:"winners_known"`
	TotalCategories int           `json:"total_categories"`
}
