package classifier

// DefaultFormTokens mark a form as a comment or posting form.
var DefaultFormTokens = []string{
	"comment",
	"message",
	"post",
	"reply",
	"discussion",
	"topic",
	"feedback",
	"respond",
}

// DefaultContainerTokens mark an element as holding user contributions.
var DefaultContainerTokens = []string{
	"comments",
	"messages",
	"posts",
	"replies",
	"discussions",
	"topics",
	"responses",
}

// nofollowToken is the rel token that excludes an anchor.
const nofollowToken = "nofollow"
