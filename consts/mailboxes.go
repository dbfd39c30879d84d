package consts

// MailboxDelimiter separates hierarchy levels in fileinto targets.
const MailboxDelimiter = '/'

// DefaultMailboxes exist for every account, so fileinto needs no :create
// for them.
var DefaultMailboxes = []string{
	"INBOX",
	"Sent",
	"Drafts",
	"Archive",
	"Junk",
	"Trash",
}
