package api

import (
	"context"

	"findvax-notifier/internal/notify"
	createsubscription "findvax-notifier/internal/workers/subscription/create-subscription"
)

type MockIntake struct {
	HandleRequestFunc func(ctx context.Context, body string) (*createsubscription.Output, error)
	bodies            []string
}

func (m *MockIntake) HandleRequest(ctx context.Context, body string) (*createsubscription.Output, error) {
	m.bodies = append(m.bodies, body)
	if m.HandleRequestFunc != nil {
		return m.HandleRequestFunc(ctx, body)
	}
	return &createsubscription.Output{Status: createsubscription.StatusSubscribed}, nil
}

type MockRunner struct {
	RunFunc func(ctx context.Context, region string) (*notify.RunReport, error)
	regions []string
}

func (m *MockRunner) Run(ctx context.Context, region string) (*notify.RunReport, error) {
	m.regions = append(m.regions, region)
	if m.RunFunc != nil {
		return m.RunFunc(ctx, region)
	}
	return &notify.RunReport{Region: region}, nil
}

type MockBroadcaster struct {
	BroadcastFunc func(ctx context.Context, region string) (*notify.BroadcastReport, error)
	regions       []string
}

func (m *MockBroadcaster) Broadcast(ctx context.Context, region string) (*notify.BroadcastReport, error) {
	m.regions = append(m.regions, region)
	if m.BroadcastFunc != nil {
		return m.BroadcastFunc(ctx, region)
	}
	return &notify.BroadcastReport{Region: region}, nil
}
