package watchparty

import "gorm.io/gorm"

type Pool struct {
	gorm.Model
	ChannelId      string `gorm:"index:,unique"`
	MaxSubmissions int
}

type Submission struct {
	gorm.Model
	Text        string
	PoolId      uint `gorm:"index"`
	SubmitterId string
}

type SubmissionMessage struct {
	gorm.Model
	SubmissionId uint `gorm:"index:,unique"`
	MessageId    string
}

type Upvote struct {
	gorm.Model
	SubmissionId uint   `gorm:"uniqueIndex:upvote_idx"`
	UserId       string `gorm:"uniqueIndex:upvote_idx"`
}
