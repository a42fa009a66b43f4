package keywords

import "strings"

// Tag is a topic label derived from free-text customer messages.
type Tag string

const (
	TagRefund             Tag = "refund"
	TagCancelSubscription Tag = "cancel_subscription"
	TagLoginIssue         Tag = "login_issue"
	TagPaymentIssue       Tag = "payment_issue"
	TagAppDownload        Tag = "app_download"
	TagHowTo              Tag = "how_to"
	TagTechnicalIssue     Tag = "technical_issue"
	TagScamReport         Tag = "scam_report"
)

type rule struct {
	substrings []string
	tag        Tag
}

// rules are checked in order; the returned tag list reflects rule order, not
// priority.
var rules = []rule{
	{[]string{"refund", "money back"}, TagRefund},
	{[]string{"cancel", "subscription"}, TagCancelSubscription},
	{[]string{"login", "password", "forgot"}, TagLoginIssue},
	{[]string{"payment", "billing", "charge"}, TagPaymentIssue},
	{[]string{"app", "download", "install"}, TagAppDownload},
	{[]string{"how to", "how do i"}, TagHowTo},
	{[]string{"not working", "error", "bug"}, TagTechnicalIssue},
	{[]string{"scam", "fraud", "report"}, TagScamReport},
}

// Extract maps a free-text message to the set of topic tags whose trigger
// substrings occur in it. Matching is case-insensitive and deterministic;
// multiple tags may fire for a single message.
func Extract(message string) []Tag {
	lowered := strings.ToLower(message)
	var tags []Tag
	for _, r := range rules {
		for _, sub := range r.substrings {
			if strings.Contains(lowered, sub) {
				tags = append(tags, r.tag)
				break
			}
		}
	}
	return tags
}

// Contains reports whether tag is present in tags.
func Contains(tags []Tag, tag Tag) bool {
	for _, t := range tags {
		if t == tag {
			return true
		}
	}
	return false
}
