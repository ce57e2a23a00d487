package voting

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/nvalette/threaddit/internal/models"
)

// GormStore persists votes and scores through gorm. Update wraps the two
// writes of a reconciliation in a single database transaction.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) targetModel(target Target) (interface{}, error) {
	switch target.Kind {
	case Posts:
		return &models.Post{}, nil
	case Comments:
		return &models.Comment{}, nil
	default:
		return nil, fmt.Errorf("unknown target kind %q", target.Kind)
	}
}

func (s *GormStore) voteClause(target Target) (string, error) {
	switch target.Kind {
	case Posts:
		return "user_id = ? AND post_id = ?", nil
	case Comments:
		return "user_id = ? AND comment_id = ?", nil
	default:
		return "", fmt.Errorf("unknown target kind %q", target.Kind)
	}
}

func (s *GormStore) TargetExists(ctx context.Context, target Target) (bool, error) {
	model, err := s.targetModel(target)
	if err != nil {
		return false, err
	}
	var count int64
	if err := s.db.WithContext(ctx).Model(model).Where("id = ?", target.ID).Count(&count).Error; err != nil {
		return false, fmt.Errorf("counting %s: %w", target.Kind, err)
	}
	return count > 0, nil
}

func (s *GormStore) VoterExists(ctx context.Context, voterID int) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ? AND deleted = ?", voterID, false).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("counting voters: %w", err)
	}
	return count > 0, nil
}

func (s *GormStore) CurrentVote(ctx context.Context, voterID int, target Target) (Direction, error) {
	clause, err := s.voteClause(target)
	if err != nil {
		return None, err
	}
	var vote models.Vote
	err = s.db.WithContext(ctx).Where(clause, voterID, target.ID).First(&vote).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return None, nil
	}
	if err != nil {
		return None, fmt.Errorf("reading vote: %w", err)
	}
	return Direction(vote.VoteType), nil
}

// ApplyScoreDelta increments the target's score in place. A relative
// UPDATE rather than a read-modify-write, so concurrent voters on the
// same target cannot clobber each other.
func (s *GormStore) ApplyScoreDelta(ctx context.Context, target Target, delta int) error {
	model, err := s.targetModel(target)
	if err != nil {
		return err
	}
	res := s.db.WithContext(ctx).Model(model).
		Where("id = ?", target.ID).
		UpdateColumn("score", gorm.Expr("score + ?", delta))
	if res.Error != nil {
		return fmt.Errorf("incrementing score: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *GormStore) SaveVote(ctx context.Context, voterID int, target Target, dir Direction) error {
	clause, err := s.voteClause(target)
	if err != nil {
		return err
	}
	db := s.db.WithContext(ctx)

	var existing models.Vote
	err = db.Where(clause, voterID, target.ID).First(&existing).Error
	if err == nil {
		existing.VoteType = int(dir)
		if err := db.Save(&existing).Error; err != nil {
			return fmt.Errorf("updating vote: %w", err)
		}
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("reading vote: %w", err)
	}

	vote := models.Vote{UserID: voterID, VoteType: int(dir)}
	id := target.ID
	switch target.Kind {
	case Posts:
		vote.PostID = &id
	case Comments:
		vote.CommentID = &id
	}
	if err := db.Create(&vote).Error; err != nil {
		return fmt.Errorf("creating vote: %w", err)
	}
	return nil
}

func (s *GormStore) ClearVote(ctx context.Context, voterID int, target Target) error {
	clause, err := s.voteClause(target)
	if err != nil {
		return err
	}
	res := s.db.WithContext(ctx).Where(clause, voterID, target.ID).Delete(&models.Vote{})
	if res.Error != nil {
		return fmt.Errorf("deleting vote: %w", res.Error)
	}
	return nil
}

func (s *GormStore) Update(ctx context.Context, fn func(Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewGormStore(tx))
	})
}
