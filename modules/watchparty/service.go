package watchparty

import (
	"errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrChannelNotConfigured = errors.New("channel has no submission pool")
	ErrSubmissionLimit      = errors.New("submission limit reached")
	ErrSubmissionNotFound   = errors.New("submission does not exist")
	ErrMessageLinkMissing   = errors.New("submission has no posted message")
)

// Service owns all state transitions and queries for channel pools,
// submissions and upvotes. Each method is a single round trip to the store;
// uniqueness invariants live in the schema, not in process memory.
type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

type RankedSubmission struct {
	Text        string
	UpvoteCount int64
	SubmitterId string
}

func (s *Service) DefinePool(channelId string, maxSubmissions int) (uint, error) {
	pool := &Pool{ChannelId: channelId, MaxSubmissions: maxSubmissions}
	err := s.db.Create(pool).Error
	return pool.ID, err
}

func (s *Service) LookupPool(channelId string) (*Pool, error) {
	pool := &Pool{}
	err := s.db.Where(&Pool{ChannelId: channelId}).First(pool).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrChannelNotConfigured
	}
	if err != nil {
		return nil, err
	}
	return pool, nil
}

// CanSubmit is a best-effort quota check. It and a following Submit are
// separate round trips, so two concurrent submissions from the same user at
// the limit can both pass and land one row over the cap.
func (s *Service) CanSubmit(poolId uint, submitterId string) (bool, error) {
	pool := &Pool{}
	err := s.db.First(pool, poolId).Error
	if err != nil {
		return false, err
	}

	var count int64
	err = s.db.Model(&Submission{}).Where(&Submission{PoolId: poolId, SubmitterId: submitterId}).Count(&count).Error
	if err != nil {
		return false, err
	}

	return count < int64(pool.MaxSubmissions), nil
}

func (s *Service) Submit(text string, poolId uint, submitterId string) (uint, error) {
	submission := &Submission{Text: text, PoolId: poolId, SubmitterId: submitterId}
	err := s.db.Create(submission).Error
	return submission.ID, err
}

func (s *Service) LookupSubmission(submissionId uint) (*Submission, error) {
	submission := &Submission{}
	err := s.db.First(submission, submissionId).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrSubmissionNotFound
	}
	if err != nil {
		return nil, err
	}
	return submission, nil
}

func (s *Service) SubmissionExists(submissionId uint) (bool, error) {
	var count int64
	err := s.db.Model(&Submission{}).Where("id = ?", submissionId).Count(&count).Error
	return count > 0, err
}

// Upvote records one user's vote on one submission. Re-casting the same vote
// is a no-op, enforced by the (submission_id, user_id) unique index.
func (s *Service) Upvote(submissionId uint, userId string) error {
	vote := &Upvote{SubmissionId: submissionId, UserId: userId}

	return s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "submission_id"}, {Name: "user_id"}},
		DoNothing: true,
	}).Create(vote).Error
}

// TopSubmissions ranks a pool's submissions by vote count, descending.
// Submissions with no votes are included with a count of zero. Ties are
// broken by submission id ascending, so insertion order wins.
func (s *Service) TopSubmissions(poolId uint, limit int) ([]RankedSubmission, error) {
	ranked := make([]RankedSubmission, 0)

	err := s.db.Model(&Submission{}).
		Select("submissions.text AS text, count(upvotes.id) AS upvote_count, submissions.submitter_id AS submitter_id").
		Joins("LEFT JOIN upvotes ON upvotes.submission_id = submissions.id").
		Where("submissions.pool_id = ?", poolId).
		Group("submissions.id, submissions.text, submissions.submitter_id").
		Order("upvote_count DESC, submissions.id ASC").
		Limit(limit).
		Scan(&ranked).Error

	return ranked, err
}

// TopVoters ranks users by how many of the pool's submissions they upvoted,
// descending, ties broken by user id ascending.
func (s *Service) TopVoters(poolId uint, limit int) ([]string, error) {
	voters := make([]string, 0)

	err := s.db.Model(&Upvote{}).
		Joins("JOIN submissions ON submissions.id = upvotes.submission_id").
		Where("submissions.pool_id = ?", poolId).
		Group("upvotes.user_id").
		Order("count(upvotes.submission_id) DESC, upvotes.user_id ASC").
		Limit(limit).
		Pluck("upvotes.user_id", &voters).Error

	return voters, err
}

// LinkMessage records which posted message displays a submission. A
// submission can be linked at most once; the unique index rejects a second.
func (s *Service) LinkMessage(submissionId uint, messageId string) error {
	return s.db.Create(&SubmissionMessage{SubmissionId: submissionId, MessageId: messageId}).Error
}

func (s *Service) MessageId(submissionId uint) (string, error) {
	link := &SubmissionMessage{}
	err := s.db.Where(&SubmissionMessage{SubmissionId: submissionId}).First(link).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", ErrMessageLinkMissing
	}
	if err != nil {
		return "", err
	}
	return link.MessageId, nil
}

func (s *Service) UpvoteCount(submissionId uint) (int64, error) {
	var count int64
	err := s.db.Model(&Upvote{}).Where(&Upvote{SubmissionId: submissionId}).Count(&count).Error
	return count, err
}

func (s *Service) Submissions(poolId uint) ([]Submission, error) {
	submissions := make([]Submission, 0)
	err := s.db.Where(&Submission{PoolId: poolId}).Order("id ASC").Find(&submissions).Error
	return submissions, err
}

// SubmissionIds lists every submission still pending across all pools, used
// at startup to report how many vote buttons the process is resuming.
func (s *Service) SubmissionIds() ([]uint, error) {
	ids := make([]uint, 0)
	err := s.db.Model(&Submission{}).Order("id ASC").Pluck("id", &ids).Error
	return ids, err
}

// EndCycle purges every submission in the pool along with its upvotes and
// message links. The purge is a hard delete, not an archive, and the pool
// definition itself survives for the next cycle.
func (s *Service) EndCycle(poolId uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		poolSubmissions := tx.Model(&Submission{}).Select("id").Where("pool_id = ?", poolId)
		err := tx.Unscoped().Where("submission_id IN (?)", poolSubmissions).Delete(&Upvote{}).Error
		if err != nil {
			return err
		}

		poolSubmissions = tx.Model(&Submission{}).Select("id").Where("pool_id = ?", poolId)
		err = tx.Unscoped().Where("submission_id IN (?)", poolSubmissions).Delete(&SubmissionMessage{}).Error
		if err != nil {
			return err
		}

		return tx.Unscoped().Where("pool_id = ?", poolId).Delete(&Submission{}).Error
	})
}
