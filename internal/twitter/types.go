package twitter

import (
	"fmt"
	"strings"
	"time"
)

type apiUser struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Username string `json:"username"`
}

type apiMedia struct {
	MediaKey        string `json:"media_key"`
	Type            string `json:"type"`
	URL             string `json:"url"`
	PreviewImageURL string `json:"preview_image_url"`
}

type apiReferencedTweet struct {
	Type string `json:"type"`
	ID   string `json:"id"`
}

type apiAttachments struct {
	MediaKeys []string `json:"media_keys"`
}

type apiNoteTweet struct {
	Text string `json:"text"`
}

type apiTweet struct {
	ID               string               `json:"id"`
	Text             string               `json:"text"`
	AuthorID         string               `json:"author_id"`
	CreatedAt        time.Time            `json:"created_at"`
	ReferencedTweets []apiReferencedTweet `json:"referenced_tweets"`
	Attachments      *apiAttachments      `json:"attachments"`
	NoteTweet        *apiNoteTweet        `json:"note_tweet"`
}

// fullText prefers the untruncated text of long posts
func (t *apiTweet) fullText() string {
	if t.NoteTweet != nil && t.NoteTweet.Text != "" {
		return t.NoteTweet.Text
	}
	return t.Text
}

type apiIncludes struct {
	Users  []apiUser  `json:"users"`
	Tweets []apiTweet `json:"tweets"`
	Media  []apiMedia `json:"media"`
}

type apiList struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type apiMeta struct {
	ResultCount int    `json:"result_count"`
	NextToken   string `json:"next_token"`
}

// apiError is a partial error reported next to (or instead of) data
type apiError struct {
	Title      string `json:"title"`
	Detail     string `json:"detail"`
	Type       string `json:"type"`
	ResourceID string `json:"resource_id"`
}

func (e apiError) Error() string {
	if e.Detail != "" {
		return e.Detail
	}
	return e.Title
}

type userResponse struct {
	Data   apiUser    `json:"data"`
	Errors []apiError `json:"errors"`
}

type listsResponse struct {
	Data   []apiList  `json:"data"`
	Meta   apiMeta    `json:"meta"`
	Errors []apiError `json:"errors"`
}

type tweetsResponse struct {
	Data     []apiTweet  `json:"data"`
	Includes apiIncludes `json:"includes"`
	Meta     apiMeta     `json:"meta"`
	Errors   []apiError  `json:"errors"`
}

func joinAPIErrors(errs []apiError) error {
	if len(errs) == 0 {
		return nil
	}
	msgs := make([]string, 0, len(errs))
	for _, e := range errs {
		msgs = append(msgs, e.Error())
	}
	return fmt.Errorf("api error: %s", strings.Join(msgs, "; "))
}
