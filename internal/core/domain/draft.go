package domain

// Draft is a model-written merge of one similarity group. Drafts are not
// stored; the caller decides whether to insert the text and resolve the members.
type Draft struct {
	GroupID     string      `json:"groupId"`
	ContentType ContentType `json:"contentType"`
	MemberIDs   []string    `json:"memberIds"`
	Markdown    string      `json:"markdown"`
	Model       string      `json:"model"`
}
