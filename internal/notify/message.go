package notify

import (
	"strings"
	"time"

	"github.com/ppiankov/pipeguard/internal/classify"
	"github.com/ppiankov/pipeguard/internal/models"
)

const (
	defaultServerURL = "https://github.com"
	defaultMessage   = "No additional details"
	shortSHALength   = 7
)

// Message is the Slack-compatible webhook body. The status color lives on
// the single attachment; everything else is Block Kit.
type Message struct {
	Attachments []Attachment `json:"attachments"`
}

// Attachment wraps the blocks with a side color.
type Attachment struct {
	Color  string  `json:"color"`
	Blocks []Block `json:"blocks"`
}

// Block is one Block Kit layout block. Only the fields relevant to Type are set.
type Block struct {
	Type     string    `json:"type"`
	Text     *Text     `json:"text,omitempty"`
	Fields   []Text    `json:"fields,omitempty"`
	Elements []Element `json:"elements,omitempty"`
}

// Element is anything allowed inside an actions or context block.
type Element interface {
	element()
}

// Text is a plain_text or mrkdwn text object.
type Text struct {
	Type  string `json:"type"`
	Text  string `json:"text"`
	Emoji bool   `json:"emoji,omitempty"`
}

func (Text) element() {}

// Button is a link button.
type Button struct {
	Type string `json:"type"`
	Text Text   `json:"text"`
	URL  string `json:"url"`
}

func (Button) element() {}

const (
	blockHeader  = "header"
	blockSection = "section"
	blockActions = "actions"
	blockContext = "context"
)

func plain(s string) *Text {
	return &Text{Type: "plain_text", Text: s, Emoji: true}
}

func mrkdwn(s string) Text {
	return Text{Type: "mrkdwn", Text: s}
}

// Links holds the URLs referenced from a message.
type Links struct {
	Repository  string
	Commit      string
	Run         string
	SecurityTab string
}

// BuildLinks derives repository, commit, run and security-tab URLs.
func BuildLinks(serverURL, repository, commitSHA, runID string) Links {
	if serverURL == "" {
		serverURL = defaultServerURL
	}
	base := strings.TrimRight(serverURL, "/") + "/" + repository
	return Links{
		Repository:  base,
		Commit:      base + "/commit/" + commitSHA,
		Run:         base + "/actions/runs/" + runID,
		SecurityTab: base + "/security",
	}
}

// ShortSHA returns the first seven characters of a commit id.
func ShortSHA(sha string) string {
	if len(sha) <= shortSHALength {
		return sha
	}
	return sha[:shortSHALength]
}

// BuildMessage assembles the structured message for req. The summary section
// exists only when at least one count is positive.
func BuildMessage(req models.NotificationRequest, links Links, now time.Time) Message {
	style := classify.ForStatus(string(req.Status))

	message := req.Message
	if strings.TrimSpace(message) == "" {
		message = defaultMessage
	}

	blocks := []Block{
		{Type: blockHeader, Text: plain(style.Icon + " " + req.Title)},
		{Type: blockSection, Fields: []Text{
			mrkdwn("*Repository:*\n<" + links.Repository + "|" + req.Repository + ">"),
			mrkdwn("*Commit:*\n<" + links.Commit + "|" + ShortSHA(req.CommitSHA) + ">"),
		}},
		{Type: blockSection, Text: ptr(mrkdwn(message))},
	}

	if summary := FormatSummary(req.Counts); summary != "" {
		blocks = append(blocks, Block{
			Type: blockSection,
			Text: ptr(mrkdwn("*Vulnerability Summary:*\n" + summary)),
		})
	}

	blocks = append(blocks,
		Block{Type: blockActions, Elements: []Element{
			Button{Type: "button", Text: *plain("View Run"), URL: links.Run},
			Button{Type: "button", Text: *plain("Security Tab"), URL: links.SecurityTab},
		}},
		Block{Type: blockContext, Elements: []Element{
			mrkdwn("DevSecOps Pipeline | " + now.UTC().Format("2006-01-02 15:04:05 UTC")),
		}},
	)

	return Message{Attachments: []Attachment{{Color: style.Color, Blocks: blocks}}}
}

func ptr(t Text) *Text {
	return &t
}
