package watchparty

import (
	"strconv"
	"strings"
)

// Upvote buttons are stateless: the submission id travels inside the
// component custom id, so a restarted process recognizes buttons posted by an
// earlier one without keeping anything in memory.
const upvotePrefix = "upvote_button_"

func upvoteCustomId(submissionId uint) string {
	return upvotePrefix + strconv.FormatUint(uint64(submissionId), 10)
}

func parseUpvoteCustomId(customId string) (uint, bool) {
	if !strings.HasPrefix(customId, upvotePrefix) {
		return 0, false
	}

	id, err := strconv.ParseUint(strings.TrimPrefix(customId, upvotePrefix), 10, 32)
	if err != nil {
		return 0, false
	}

	return uint(id), true
}
