package utils

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// ErrItemNotFound is returned when the content API has no item under the name.
var ErrItemNotFound = errors.New("content item not found")

// ContentClient reads published items (quiz definitions) from the headless CMS.
type ContentClient struct {
	client *resty.Client
	root   string
	key    string
}

// NewContentClient builds a client for the given API root and key.
func NewContentClient(root, key string) *ContentClient {
	return &ContentClient{
		client: resty.New().SetTimeout(15 * time.Second),
		root:   strings.TrimRight(root, "/"),
		key:    key,
	}
}

// QuizQuestion is one question of a quiz definition with its correct answer.
type QuizQuestion struct {
	Id            string `json:"id"`
	CorrectAnswer string `json:"correctAnswer"`
}

// QuizDefinition is the authoritative quiz content used for grading.
type QuizDefinition struct {
	Id        string         `json:"id"`
	Name      string         `json:"name"`
	Questions []QuizQuestion `json:"questions"`
}

type contentItem struct {
	Item struct {
		System struct {
			Id   string `json:"id"`
			Name string `json:"name"`
		} `json:"system"`
		Elements struct {
			Questions struct {
				Value json.RawMessage `json:"value"`
			} `json:"questions"`
		} `json:"elements"`
	} `json:"item"`
}

// GetQuizDefinition fetches a quiz by item name. An item the API returns without
// a system id counts as not found.
func (c *ContentClient) GetQuizDefinition(name string) (*QuizDefinition, error) {
	var item contentItem
	resp, err := c.client.R().
		SetAuthToken(c.key).
		SetResult(&item).
		Get(fmt.Sprintf("%s/items/%s", c.root, name))
	if err != nil {
		return nil, fmt.Errorf("content api request failed: %w", err)
	}
	if resp.StatusCode() == 404 {
		return nil, ErrItemNotFound
	}
	if resp.IsError() {
		return nil, fmt.Errorf("content api returned status %d", resp.StatusCode())
	}
	if item.Item.System.Id == "" {
		return nil, ErrItemNotFound
	}

	def := &QuizDefinition{
		Id:   item.Item.System.Id,
		Name: item.Item.System.Name,
	}
	if raw := item.Item.Elements.Questions.Value; len(raw) > 0 {
		if err := json.Unmarshal(raw, &def.Questions); err != nil {
			return nil, fmt.Errorf("content api returned malformed questions for %s: %w", name, err)
		}
	}
	return def, nil
}
