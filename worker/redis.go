package worker

import (
	"context"
	"fmt"
	"time"

	"text2phenotype.com/itn/tasks"
)

const RFC3339Micro = "2006-01-02T15:04:05.000000-07:00"

func formattedNow() *string {
	now := time.Now().UTC().Format(RFC3339Micro)
	return &now
}

// redisTransactions records the tagging state of documents.
type redisTransactions interface {
	getDocumentTask(ctx context.Context, docID string) (*tasks.DocumentTask, error)
	onTaskStarted(task *Task) error
	onTaskUnsupported(task *Task, err error) error
	onTaskExceededRetries(task *Task, maxRetries int) error
	onTaskFailedWithError(task *Task, err error) error
	onTaskComplete(task *Task) error
	close()
}

type redisClientWrapper struct {
	tasksClient *tasks.Client
}

func (wrapper *redisClientWrapper) close() {
	_ = wrapper.tasksClient.Close()
}

func (wrapper *redisClientWrapper) getDocumentTask(ctx context.Context, docID string) (*tasks.DocumentTask, error) {
	return wrapper.tasksClient.Get(ctx, docID)
}

// update applies updateFunc to the stored document and mirrors the result
// into the task.
func (wrapper *redisClientWrapper) update(task *Task, updateFunc func(docTask *tasks.DocumentTask)) error {
	return wrapper.tasksClient.Update(task.ctx, task.message.DocID, func(docTask *tasks.DocumentTask) {
		docTask.DocID = task.message.DocID
		docTask.TextFileKey = task.message.TextFileKey
		docTask.Language = task.message.Language
		docTask.Direction = task.message.Direction
		if task.routeErr == nil {
			docTask.Language = task.key.Language
			docTask.Direction = string(task.key.Direction)
		}
		updateFunc(docTask)
		*task.docTask = *docTask
	})
}

func (wrapper *redisClientWrapper) onTaskStarted(task *Task) error {
	return wrapper.update(task, func(docTask *tasks.DocumentTask) {
		docTask.Status = tasks.TaskStatusStarted
		docTask.Attempts++
		docTask.StartedAt = formattedNow()
		docTask.CompletedAt = nil
	})
}

func (wrapper *redisClientWrapper) onTaskUnsupported(task *Task, err error) error {
	return wrapper.update(task, func(docTask *tasks.DocumentTask) {
		docTask.Status = tasks.TaskStatusCompletedFailure
		docTask.CompletedAt = formattedNow()
		docTask.ErrorMessages = append(docTask.ErrorMessages, err.Error())
	})
}

func (wrapper *redisClientWrapper) onTaskExceededRetries(task *Task, maxRetries int) error {
	return wrapper.update(task, func(docTask *tasks.DocumentTask) {
		docTask.Status = tasks.TaskStatusCompletedFailure
		docTask.CompletedAt = formattedNow()
		docTask.ErrorMessages = append(
			docTask.ErrorMessages,
			fmt.Sprintf("Task has exceeded retries. (Attempts: %d, max retries: %d )", docTask.Attempts, maxRetries),
		)
	})
}

func (wrapper *redisClientWrapper) onTaskFailedWithError(task *Task, err error) error {
	return wrapper.update(task, func(docTask *tasks.DocumentTask) {
		docTask.Status = tasks.TaskStatusFailed
		docTask.CompletedAt = formattedNow()
		docTask.ErrorMessages = append(docTask.ErrorMessages, err.Error())
	})
}

func (wrapper *redisClientWrapper) onTaskComplete(task *Task) error {
	return wrapper.update(task, func(docTask *tasks.DocumentTask) {
		if !docTask.Status.Complete() {
			docTask.Status = tasks.TaskStatusCompletedSuccess
		}
		docTask.CompletedAt = formattedNow()
		docTask.ResultsFileKey = resultsFileKey(task)
	})
}
