package domain

import (
	"context"
	"time"
)

// GameTemplate is a canned party game from the in-memory catalog.
// swagger:model GameTemplate
type GameTemplate struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	Description    string   `json:"description"`
	MinPlayers     int      `json:"min_players"`
	MaxPlayers     int      `json:"max_players"`
	DurationMins   int      `json:"duration_mins"`
	EnergyLevel    int      `json:"energy_level"`    // 1 (calm) .. 5 (wild)
	IndoorFriendly bool     `json:"indoor_friendly"`
	Tags           []string `json:"tags"`
}

// EventProfile is a structured description of an event used for game scoring.
type EventProfile struct {
	GuestCount   int      `json:"guest_count"`
	DurationMins int      `json:"duration_mins"`
	EnergyLevel  int      `json:"energy_level"`
	Indoor       bool     `json:"indoor"`
	Vibes        []string `json:"vibes"`
}

// GameRecommendation pairs a template with its match score (0..100).
type GameRecommendation struct {
	Template *GameTemplate `json:"template"`
	Score    float64       `json:"score"`
}

// GameSessionStatus is the lifecycle state of a running game session.
type GameSessionStatus string

const (
	GameStatusNotStarted GameSessionStatus = "not_started"
	GameStatusInProgress GameSessionStatus = "in_progress"
	GameStatusPaused     GameSessionStatus = "paused"
	GameStatusCompleted  GameSessionStatus = "completed"
)

// GameSession is an ephemeral, in-memory game run. It is never persisted and
// is discarded when the process exits.
type GameSession struct {
	ID           string            `json:"id"`
	EventID      string            `json:"event_id"`
	HostID       string            `json:"host_id"`
	TemplateID   string            `json:"template_id"`
	Participants []string          `json:"participants"`
	Status       GameSessionStatus `json:"status"`
	Scores       map[string]int    `json:"scores"`
	StartedAt    *time.Time        `json:"started_at,omitempty"`
	CompletedAt  *time.Time        `json:"completed_at,omitempty"`
}

// GameService defines game recommendation and session lifecycle operations.
type GameService interface {
	ListTemplates() []*GameTemplate
	// RecommendGames scores every catalog template against the profile and
	// returns those above the recommendation threshold, best first.
	RecommendGames(profile EventProfile) []*GameRecommendation
	StartSession(ctx context.Context, eventID, hostID, templateID string, participants []string) (*GameSession, error)
	GetSession(ctx context.Context, sessionID string) (*GameSession, error)
	PauseSession(ctx context.Context, sessionID, hostID string) (*GameSession, error)
	ResumeSession(ctx context.Context, sessionID, hostID string) (*GameSession, error)
	CompleteSession(ctx context.Context, sessionID, hostID string) (*GameSession, error)
	RecordScore(ctx context.Context, sessionID, hostID, participant string, points int) (*GameSession, error)
}
