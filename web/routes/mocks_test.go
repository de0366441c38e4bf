package routes_test

import (
	"iter"

	"github.com/dasdy/tapboard/layout"
	"github.com/dasdy/tapboard/model"
	"github.com/dasdy/tapboard/web/routes"
)

// SimpleStorageMock is a simple manual mock implementation of the Storage interface
type SimpleStorageMock struct {
	ReturnStats []model.CharCount
	ReturnError error
	CallCount   int
}

func (m *SimpleStorageMock) GatherAll() ([]model.CharCount, error) {
	m.CallCount++

	return m.ReturnStats, m.ReturnError
}

func (m *SimpleStorageMock) AllIterator() (iter.Seq[model.CommitEvent], error) {
	return func(_ func(model.CommitEvent) bool) {}, nil
}

func (m *SimpleStorageMock) Close() {}

func (m *SimpleStorageMock) Store(_ *model.CommitEvent) error {
	return nil
}

// TrackerMock is a simple mock implementation of the Tracker interface
type TrackerMock struct {
	ReturnPairs []model.Pair
	CallCount   int
	LastChar    rune
}

func (m *TrackerMock) HandleCharNow(_ rune, _ bool) {}

func (m *TrackerMock) GatherNeighbors(char rune) []model.Pair {
	m.CallCount++
	m.LastChar = char

	return m.ReturnPairs
}

// testKeyboards lays out as
//
//	a b
//	♻ c ⌫
func testKeyboards() layout.Keyboards {
	return layout.Keyboards{
		Name:      "test",
		Lowercase: []string{"ab", "c"},
		Caps:      []string{"AB", "C"},
		Numeric:   []string{"12", "3"},
	}
}

// MockServerHandler helper struct for testing
type MockServerHandler struct {
	routes.ServerHandler
	MockStorage *SimpleStorageMock
	MockTracker *TrackerMock
}

func setupMockServerHandler() MockServerHandler {
	mockStorage := &SimpleStorageMock{}
	mockTracker := &TrackerMock{}

	return MockServerHandler{
		ServerHandler: routes.ServerHandler{
			Storage:         mockStorage,
			NeighborTracker: mockTracker,
			Keyboards:       testKeyboards(),
		},
		MockStorage: mockStorage,
		MockTracker: mockTracker,
	}
}
