package tasks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"text2phenotype.com/itn/redis"
)

const DocumentsDB redis.DB = 0

type TaskStatus string

const (
	TaskStatusSubmitted        TaskStatus = "submitted"
	TaskStatusStarted          TaskStatus = "started"
	TaskStatusFailed           TaskStatus = "failed"
	TaskStatusCompletedSuccess TaskStatus = "completed - success"
	TaskStatusCompletedFailure TaskStatus = "completed - failure"
)

func (s TaskStatus) Complete() bool {
	return s == TaskStatusCompletedSuccess || s == TaskStatusCompletedFailure
}

// DocumentTask tracks tagging of one document. Other services may add their
// own fields to the stored document; updates keep them.
type DocumentTask struct {
	DocID          string     `json:"document_id"`
	TextFileKey    string     `json:"text_file_key"`
	Language       string     `json:"language,omitempty"`
	Direction      string     `json:"direction,omitempty"`
	ResultsFileKey string     `json:"results_file_key,omitempty"`
	Status         TaskStatus `json:"status,omitempty"`
	Attempts       int        `json:"attempts"`
	StartedAt      *string    `json:"started_at"`
	CompletedAt    *string    `json:"completed_at"`
	ErrorMessages  []string   `json:"error_messages,omitempty"`
}

func Key(docID string) string {
	return fmt.Sprintf("itn:document:%s", docID)
}

type Client struct {
	client *redis.Client
}

func NewClient() (*Client, error) {
	client, err := redis.NewClient(DocumentsDB)
	if err != nil {
		return nil, err
	}
	return &Client{client: client}, nil
}

// Get returns the task of docID. A document nobody recorded yet is a fresh
// task with no attempts.
func (c *Client) Get(ctx context.Context, docID string) (*DocumentTask, error) {
	task := DocumentTask{DocID: docID}
	raw, err := c.client.GetDocument(ctx, Key(docID))
	if errors.Is(err, redis.ErrNotFound) {
		return &task, nil
	}
	if err != nil {
		return nil, err
	}
	if err = json.Unmarshal(raw, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

func (c *Client) Update(ctx context.Context, docID string, updateFunc func(task *DocumentTask)) error {
	var task DocumentTask
	return c.client.UpdateDocument(ctx, Key(docID), &task, func() error {
		updateFunc(&task)
		return nil
	})
}

func (c *Client) Close() error {
	return c.client.Close()
}
