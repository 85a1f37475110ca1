package services

import (
	"context"
	"math"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"partyhaus/internal/domain"
)

// Scoring weights per profile dimension. A template is recommended when its
// weighted sum reaches the threshold.
const (
	weightGuestCount = 25.0
	weightDuration   = 20.0
	weightIndoor     = 15.0
	weightEnergy     = 25.0
	weightVibes      = 15.0

	recommendThreshold = 60.0
)

type gameService struct {
	catalog []*domain.GameTemplate

	mu       sync.Mutex
	sessions map[string]*domain.GameSession
}

// NewGameService creates a GameService backed by the built-in template catalog.
// Sessions live only in process memory.
func NewGameService() domain.GameService {
	return &gameService{
		catalog:  defaultCatalog(),
		sessions: make(map[string]*domain.GameSession),
	}
}

func defaultCatalog() []*domain.GameTemplate {
	return []*domain.GameTemplate{
		{
			ID: "two-truths-one-lie", Name: "Two Truths and a Lie",
			Description:    "Each guest shares three statements; the group votes on the lie.",
			MinPlayers:     4, MaxPlayers: 20, DurationMins: 20, EnergyLevel: 2,
			IndoorFriendly: true, Tags: []string{"icebreaker", "conversation"},
		},
		{
			ID: "charades", Name: "Charades",
			Description:    "Act out a prompt without speaking while your team guesses.",
			MinPlayers:     6, MaxPlayers: 24, DurationMins: 30, EnergyLevel: 4,
			IndoorFriendly: true, Tags: []string{"acting", "teams", "classic"},
		},
		{
			ID: "scavenger-hunt", Name: "Scavenger Hunt",
			Description:    "Teams race to find or photograph items from a list.",
			MinPlayers:     6, MaxPlayers: 40, DurationMins: 45, EnergyLevel: 5,
			IndoorFriendly: false, Tags: []string{"teams", "active", "outdoor"},
		},
		{
			ID: "trivia-night", Name: "Trivia Night",
			Description:    "Quiz rounds on music, movies, and the guests themselves.",
			MinPlayers:     4, MaxPlayers: 30, DurationMins: 40, EnergyLevel: 2,
			IndoorFriendly: true, Tags: []string{"quiz", "teams", "conversation"},
		},
		{
			ID: "karaoke-roulette", Name: "Karaoke Roulette",
			Description:    "A random song assignment for every brave singer.",
			MinPlayers:     3, MaxPlayers: 25, DurationMins: 60, EnergyLevel: 5,
			IndoorFriendly: true, Tags: []string{"music", "performance"},
		},
		{
			ID: "werewolf", Name: "Werewolf",
			Description:    "Hidden roles, nightly eliminations, and daytime accusations.",
			MinPlayers:     8, MaxPlayers: 18, DurationMins: 35, EnergyLevel: 3,
			IndoorFriendly: true, Tags: []string{"hidden-roles", "social-deduction"},
		},
		{
			ID: "giant-jenga", Name: "Giant Jenga",
			Description:    "Oversized block tower with forfeit tasks written on the blocks.",
			MinPlayers:     2, MaxPlayers: 12, DurationMins: 25, EnergyLevel: 3,
			IndoorFriendly: false, Tags: []string{"active", "outdoor", "dexterity"},
		},
		{
			ID: "pictionary", Name: "Pictionary",
			Description:    "Draw the prompt while your team shouts guesses.",
			MinPlayers:     4, MaxPlayers: 16, DurationMins: 30, EnergyLevel: 3,
			IndoorFriendly: true, Tags: []string{"drawing", "teams", "classic"},
		},
	}
}

func (s *gameService) ListTemplates() []*domain.GameTemplate {
	out := make([]*domain.GameTemplate, len(s.catalog))
	copy(out, s.catalog)
	return out
}

func (s *gameService) RecommendGames(profile domain.EventProfile) []*domain.GameRecommendation {
	recs := make([]*domain.GameRecommendation, 0, len(s.catalog))
	for _, tpl := range s.catalog {
		score := scoreTemplate(tpl, profile)
		if score >= recommendThreshold {
			recs = append(recs, &domain.GameRecommendation{Template: tpl, Score: score})
		}
	}
	sort.SliceStable(recs, func(i, j int) bool { return recs[i].Score > recs[j].Score })
	return recs
}

// scoreTemplate computes the weighted match score (0..100) of a template
// against an event profile.
func scoreTemplate(tpl *domain.GameTemplate, p domain.EventProfile) float64 {
	var score float64

	// Player count: full weight inside the range, sharp falloff outside.
	switch {
	case p.GuestCount >= tpl.MinPlayers && p.GuestCount <= tpl.MaxPlayers:
		score += weightGuestCount
	case p.GuestCount > 0:
		var dist int
		if p.GuestCount < tpl.MinPlayers {
			dist = tpl.MinPlayers - p.GuestCount
		} else {
			dist = p.GuestCount - tpl.MaxPlayers
		}
		score += weightGuestCount * math.Max(0, 1-float64(dist)/4)
	}

	// Duration: the game should fit in the event with room to spare.
	if p.DurationMins <= 0 || tpl.DurationMins <= p.DurationMins {
		score += weightDuration
	} else if tpl.DurationMins <= p.DurationMins*2 {
		score += weightDuration / 2
	}

	if !p.Indoor || tpl.IndoorFriendly {
		score += weightIndoor
	}

	// Energy: linear penalty per level of mismatch on the 1..5 scale.
	if p.EnergyLevel > 0 {
		diff := math.Abs(float64(tpl.EnergyLevel - p.EnergyLevel))
		score += weightEnergy * math.Max(0, 1-diff/4)
	} else {
		score += weightEnergy
	}

	// Vibes: fraction of requested vibes covered by the template tags.
	if len(p.Vibes) == 0 {
		score += weightVibes
	} else {
		matched := 0
		for _, vibe := range p.Vibes {
			for _, tag := range tpl.Tags {
				if strings.EqualFold(vibe, tag) {
					matched++
					break
				}
			}
		}
		score += weightVibes * float64(matched) / float64(len(p.Vibes))
	}
	return score
}

func (s *gameService) StartSession(ctx context.Context, eventID, hostID, templateID string, participants []string) (*domain.GameSession, error) {
	if eventID == "" || hostID == "" || len(participants) == 0 {
		return nil, domain.ErrInvalidInput
	}
	if s.templateByID(templateID) == nil {
		return nil, domain.ErrNotFound
	}

	now := time.Now()
	session := &domain.GameSession{
		ID:           uuid.NewString(),
		EventID:      eventID,
		HostID:       hostID,
		TemplateID:   templateID,
		Participants: append([]string(nil), participants...),
		Status:       domain.GameStatusInProgress,
		Scores:       make(map[string]int, len(participants)),
		StartedAt:    &now,
	}
	for _, p := range participants {
		session.Scores[p] = 0
	}

	s.mu.Lock()
	s.sessions[session.ID] = session
	s.mu.Unlock()
	return copySession(session), nil
}

func (s *gameService) GetSession(ctx context.Context, sessionID string) (*domain.GameSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[sessionID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return copySession(session), nil
}

func (s *gameService) PauseSession(ctx context.Context, sessionID, hostID string) (*domain.GameSession, error) {
	return s.transition(sessionID, hostID, domain.GameStatusPaused, domain.GameStatusInProgress)
}

func (s *gameService) ResumeSession(ctx context.Context, sessionID, hostID string) (*domain.GameSession, error) {
	return s.transition(sessionID, hostID, domain.GameStatusInProgress, domain.GameStatusPaused)
}

func (s *gameService) CompleteSession(ctx context.Context, sessionID, hostID string) (*domain.GameSession, error) {
	session, err := s.transition(sessionID, hostID, domain.GameStatusCompleted, domain.GameStatusInProgress, domain.GameStatusPaused)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	s.mu.Lock()
	s.sessions[sessionID].CompletedAt = &now
	s.mu.Unlock()
	session.CompletedAt = &now
	return session, nil
}

func (s *gameService) RecordScore(ctx context.Context, sessionID, hostID, participant string, points int) (*domain.GameSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[sessionID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if session.HostID != hostID {
		return nil, domain.ErrForbidden
	}
	if session.Status != domain.GameStatusInProgress {
		return nil, domain.ErrInvalidTransition
	}
	if _, ok := session.Scores[participant]; !ok {
		return nil, domain.ErrInvalidInput
	}
	session.Scores[participant] += points
	return copySession(session), nil
}

// transition moves the session to next if its current status is one of from.
func (s *gameService) transition(sessionID, hostID string, next domain.GameSessionStatus, from ...domain.GameSessionStatus) (*domain.GameSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[sessionID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if session.HostID != hostID {
		return nil, domain.ErrForbidden
	}
	allowed := false
	for _, f := range from {
		if session.Status == f {
			allowed = true
			break
		}
	}
	if !allowed {
		return nil, domain.ErrInvalidTransition
	}
	session.Status = next
	return copySession(session), nil
}

func (s *gameService) templateByID(id string) *domain.GameTemplate {
	for _, tpl := range s.catalog {
		if tpl.ID == id {
			return tpl
		}
	}
	return nil
}

func copySession(in *domain.GameSession) *domain.GameSession {
	out := *in
	out.Participants = append([]string(nil), in.Participants...)
	out.Scores = make(map[string]int, len(in.Scores))
	for k, v := range in.Scores {
		out.Scores[k] = v
	}
	return &out
}
