package worker

import (
	"context"
	"errors"

	"github.com/streadway/amqp"

	"text2phenotype.com/itn/pipeline"
	"text2phenotype.com/itn/tasks"
)

type failingMethod struct {
	fail bool
}

type withValue struct {
	fail          bool
	returnedValue interface{}
}

type pipelineMock struct {
	ppln   pipeline.Pipeline
	config pipelineMockConfig
	calls  pipelineCall
}

type pipelineMockConfig struct {
	fail   bool
	panic  bool
	result string
}

type pipelineCall struct {
	pipeline bool
}

type redisMock struct {
	config redisMockConfig
	calls  redisMockCalls
}

type redisMockConfig struct {
	getDocumentTask       withValue
	onTaskStarted         failingMethod
	onTaskUnsupported     failingMethod
	onTaskExceededRetries failingMethod
	onTaskFailedWithError failingMethod
	onTaskComplete        failingMethod
}

type redisMockCalls struct {
	getDocumentTask       bool
	onTaskStarted         bool
	onTaskUnsupported     bool
	onTaskExceededRetries bool
	onTaskFailedWithError bool
	onTaskComplete        bool
}

type rmqMock struct {
	config       rmqMockConfig
	calls        rmqMockCalls
	sent         *ResultMessage
	deliveriesCh chan amqp.Delivery
}

type rmqMockConfig struct {
	publishResult failingMethod
	ack           failingMethod
}

type rmqMockCalls struct {
	publishResult bool
	ack           bool
	reject        bool
	requeue       bool
	close         bool
}

type s3Mock struct {
	config   s3MockConfig
	calls    s3MockCalls
	textKey  string
	savedKey string
}

type s3MockConfig struct {
	getText     withValue
	saveResults failingMethod
}

type s3MockCalls struct {
	getText     bool
	saveResults bool
}

func (mock *s3Mock) close() {}

func (mock *rmqMock) close() {
	mock.calls.close = true
}

func (mock *redisMock) close() {}

func getPipelineMock(config pipelineMockConfig) *pipelineMock {
	mock := pipelineMock{config: config}
	switch {
	case config.fail:
		mock.ppln = func(request pipeline.Request) <-chan string {
			mock.calls.pipeline = true
			ch := make(chan string)
			close(ch)
			return ch
		}
	case config.panic:
		mock.ppln = func(request pipeline.Request) <-chan string {
			mock.calls.pipeline = true
			panic("pipeline exploded")
		}
	default:
		mock.ppln = func(request pipeline.Request) <-chan string {
			mock.calls.pipeline = true
			ch := make(chan string, 1)
			ch <- mock.config.result
			close(ch)
			return ch
		}
	}
	return &mock
}

func (mock *redisMock) getDocumentTask(ctx context.Context, docID string) (*tasks.DocumentTask, error) {
	mock.calls.getDocumentTask = true
	if mock.config.getDocumentTask.fail {
		return nil, errors.New("failed to get document task")
	}
	switch value := mock.config.getDocumentTask.returnedValue.(type) {
	case tasks.DocumentTask:
		return &value, nil
	default:
		return &tasks.DocumentTask{DocID: docID}, nil
	}
}

func (mock *redisMock) onTaskStarted(task *Task) error {
	mock.calls.onTaskStarted = true
	if mock.config.onTaskStarted.fail {
		return errors.New("failed to update document task on start")
	}
	task.docTask.Status = tasks.TaskStatusStarted
	task.docTask.Attempts++
	return nil
}

func (mock *redisMock) onTaskUnsupported(task *Task, err error) error {
	mock.calls.onTaskUnsupported = true
	if mock.config.onTaskUnsupported.fail {
		return errors.New("failed to update document task on unsupported grammar")
	}
	task.docTask.Status = tasks.TaskStatusCompletedFailure
	task.docTask.ErrorMessages = append(task.docTask.ErrorMessages, err.Error())
	return nil
}

func (mock *redisMock) onTaskExceededRetries(task *Task, maxRetries int) error {
	mock.calls.onTaskExceededRetries = true
	if mock.config.onTaskExceededRetries.fail {
		return errors.New("failed to update document task on exceeded retries")
	}
	task.docTask.Status = tasks.TaskStatusCompletedFailure
	return nil
}

func (mock *redisMock) onTaskFailedWithError(task *Task, err error) error {
	mock.calls.onTaskFailedWithError = true
	if mock.config.onTaskFailedWithError.fail {
		return errors.New("failed to update document task on fail with error")
	}
	task.docTask.Status = tasks.TaskStatusFailed
	return nil
}

func (mock *redisMock) onTaskComplete(task *Task) error {
	mock.calls.onTaskComplete = true
	if mock.config.onTaskComplete.fail {
		return errors.New("failed to update document task on complete")
	}
	task.docTask.Status = tasks.TaskStatusCompletedSuccess
	task.docTask.ResultsFileKey = resultsFileKey(task)
	return nil
}

func (mock *rmqMock) publishResult(result ResultMessage, correlationID string) error {
	mock.calls.publishResult = true
	if mock.config.publishResult.fail {
		return errors.New("failed to publish result")
	}
	mock.sent = &result
	return nil
}

func (mock *rmqMock) ack(delivery *amqp.Delivery) error {
	mock.calls.ack = true
	if mock.config.ack.fail {
		return errors.New("failed to acknowledge delivery")
	}
	return nil
}

func (mock *rmqMock) reject(delivery *amqp.Delivery, requeue bool) error {
	mock.calls.reject = true
	mock.calls.requeue = requeue
	return nil
}

func (mock *rmqMock) deliveries() <-chan amqp.Delivery {
	return mock.deliveriesCh
}

func (mock *rmqMock) closed() (req, resp <-chan *amqp.Error) {
	return nil, nil
}

func (mock *s3Mock) getText(key string) ([]byte, error) {
	mock.calls.getText = true
	mock.textKey = key
	if mock.config.getText.fail {
		return nil, errors.New("mock: failed to load from s3")
	}
	switch value := mock.config.getText.returnedValue.(type) {
	case []byte:
		return value, nil
	default:
		return []byte("some input"), nil
	}
}

func (mock *s3Mock) saveResults(key, result string) error {
	mock.calls.saveResults = true
	if mock.config.saveResults.fail {
		return errors.New("failed to upload results")
	}
	mock.savedKey = key
	return nil
}
