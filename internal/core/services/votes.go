package services

import (
	"context"
	"strings"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"map-catalog-service/internal/core/domain"
	"map-catalog-service/internal/core/ports/output"
)

// VoteService records at most one vote per user per map. The store keeps
// the vote count equal to the voter set size.
type VoteService struct {
	maps    ports.MapRepository
	metrics ports.Metrics
}

func NewVoteService(maps ports.MapRepository, metrics ports.Metrics) *VoteService {
	if metrics == nil {
		metrics = ports.NoopMetrics{}
	}
	return &VoteService{maps: maps, metrics: metrics}
}

func (s *VoteService) visible(ctx context.Context, mapID uuid.UUID) (*domain.Map, error) {
	m, err := s.maps.GetByID(ctx, mapID)
	if err != nil {
		return nil, err
	}
	if m.IsArchived() {
		return nil, domain.ErrMapNotFound
	}
	return m, nil
}

func (s *VoteService) HasVoted(ctx context.Context, mapID uuid.UUID, userID string) (bool, error) {
	if strings.TrimSpace(userID) == "" {
		return false, domain.ErrMissingUserID
	}
	m, err := s.visible(ctx, mapID)
	if err != nil {
		return false, err
	}
	return m.HasVoter(userID), nil
}

func (s *VoteService) VoteCount(ctx context.Context, mapID uuid.UUID) (int, error) {
	m, err := s.visible(ctx, mapID)
	if err != nil {
		return 0, err
	}
	return m.Votes, nil
}

// AddVote returns the new vote count, or ErrAlreadyVoted if userID is
// already a voter.
func (s *VoteService) AddVote(ctx context.Context, mapID uuid.UUID, userID string) (int, error) {
	if strings.TrimSpace(userID) == "" {
		return 0, domain.ErrMissingUserID
	}
	votes, err := s.maps.AddVoter(ctx, mapID, userID)
	s.observe("add", mapID, userID, err)
	return votes, err
}

// RemoveVote returns the new vote count, or ErrNotVoted if userID is not a
// voter.
func (s *VoteService) RemoveVote(ctx context.Context, mapID uuid.UUID, userID string) (int, error) {
	if strings.TrimSpace(userID) == "" {
		return 0, domain.ErrMissingUserID
	}
	votes, err := s.maps.RemoveVoter(ctx, mapID, userID)
	s.observe("remove", mapID, userID, err)
	return votes, err
}

func (s *VoteService) observe(op string, mapID uuid.UUID, userID string, err error) {
	if err == nil {
		s.metrics.IncVote(op, "ok")
		return
	}
	reason := domain.ReasonOf(err)
	s.metrics.IncVote(op, string(reason))
	switch reason {
	case domain.ReasonAlreadyVoted, domain.ReasonNotVoted, domain.ReasonNotFound:
		return
	}
	log.WithError(err).WithFields(log.Fields{
		"map_id":  mapID,
		"user_id": userID,
		"op":      op,
	}).Error("vote update failed")
}
