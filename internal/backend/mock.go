package backend

import (
	"context"
	"strings"
	"sync"

	"github.com/firefly-engineering/snapbox/internal/errors"
)

// MockBackend is an in-memory implementation of Backend for testing
type MockBackend struct {
	mu sync.RWMutex

	// BackendName is returned by Name (defaults to "mock")
	BackendName string

	// Instances tracks the state of mock instances
	Instances map[string]*InstanceInfo

	// Mounts tracks active mount targets per instance
	Mounts map[string][]string

	// SharedMounts is returned by SharesMounts
	SharedMounts bool

	// RunResults maps space-joined commands to predefined results.
	// Commands without an entry succeed with empty output.
	RunResults map[string]*ExecResult

	// Errors allows injecting errors for specific operations, keyed by method name
	Errors map[string]error

	// CallLog records all method calls for verification
	CallLog []MockCall
}

// MockCall represents a recorded method call
type MockCall struct {
	Method string
	Args   []interface{}
}

// NewMockBackend creates a new mock backend
func NewMockBackend() *MockBackend {
	return &MockBackend{
		BackendName: "mock",
		Instances:   make(map[string]*InstanceInfo),
		Mounts:      make(map[string][]string),
		RunResults:  make(map[string]*ExecResult),
		Errors:      make(map[string]error),
		CallLog:     make([]MockCall, 0),
	}
}

func (m *MockBackend) record(method string, args ...interface{}) {
	m.CallLog = append(m.CallLog, MockCall{Method: method, Args: args})
}

// SharesMounts reports the configured SharedMounts
func (m *MockBackend) SharesMounts() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.SharedMounts
}

// SetError sets an error to be returned for a specific operation
func (m *MockBackend) SetError(operation string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Errors[operation] = err
}

// ClearError removes an injected error
func (m *MockBackend) ClearError(operation string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.Errors, operation)
}

// SetRunResult sets the result returned when command is run
func (m *MockBackend) SetRunResult(command []string, result *ExecResult) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RunResults[strings.Join(command, " ")] = result
}

// AddInstance adds an existing instance to the mock
func (m *MockBackend) AddInstance(name string, status InstanceStatus) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Instances[name] = &InstanceInfo{Name: name, Status: status}
}

// GetCalls returns all recorded calls
func (m *MockBackend) GetCalls() []MockCall {
	m.mu.RLock()
	defer m.mu.RUnlock()
	calls := make([]MockCall, len(m.CallLog))
	copy(calls, m.CallLog)
	return calls
}

// GetCallsFor returns all calls for a specific method
func (m *MockBackend) GetCallsFor(method string) []MockCall {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var calls []MockCall
	for _, call := range m.CallLog {
		if call.Method == method {
			calls = append(calls, call)
		}
	}
	return calls
}

// RunCommands returns the space-joined commands passed to Run, in order
func (m *MockBackend) RunCommands() []string {
	var cmds []string
	for _, call := range m.GetCallsFor("Run") {
		cmds = append(cmds, strings.Join(call.Args[1].([]string), " "))
	}
	return cmds
}

// Reset clears all state
func (m *MockBackend) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Instances = make(map[string]*InstanceInfo)
	m.Mounts = make(map[string][]string)
	m.RunResults = make(map[string]*ExecResult)
	m.Errors = make(map[string]error)
	m.CallLog = make([]MockCall, 0)
}

// Name returns the backend identifier
func (m *MockBackend) Name() string {
	return m.BackendName
}

// Launch creates a stopped instance
func (m *MockBackend) Launch(ctx context.Context, name string, opts LaunchOptions) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("Launch", name, opts)

	if err, ok := m.Errors["Launch"]; ok {
		return err
	}

	m.Instances[name] = &InstanceInfo{Name: name, Status: StatusStopped}
	return nil
}

// Start starts an existing instance
func (m *MockBackend) Start(ctx context.Context, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("Start", name)

	if err, ok := m.Errors["Start"]; ok {
		return err
	}

	if instance, ok := m.Instances[name]; ok {
		instance.Status = StatusRunning
		return nil
	}

	return errors.InstanceNotFound(name)
}

// Stop stops a running instance
func (m *MockBackend) Stop(ctx context.Context, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("Stop", name)

	if err, ok := m.Errors["Stop"]; ok {
		return err
	}

	if instance, ok := m.Instances[name]; ok {
		instance.Status = StatusStopped
		return nil
	}

	return errors.InstanceNotFound(name)
}

// Destroy removes an instance
func (m *MockBackend) Destroy(ctx context.Context, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("Destroy", name)

	if err, ok := m.Errors["Destroy"]; ok {
		return err
	}

	delete(m.Instances, name)
	delete(m.Mounts, name)
	return nil
}

// Run returns the configured result for command
func (m *MockBackend) Run(ctx context.Context, name string, command []string, opts ExecOptions) (*ExecResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("Run", name, command, opts)

	if err, ok := m.Errors["Run"]; ok {
		return nil, err
	}

	if result, ok := m.RunResults[strings.Join(command, " ")]; ok {
		return result, nil
	}

	return &ExecResult{}, nil
}

// Shell records an interactive session
func (m *MockBackend) Shell(ctx context.Context, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("Shell", name)

	if err, ok := m.Errors["Shell"]; ok {
		return err
	}
	return nil
}

// Mount records an active mount
func (m *MockBackend) Mount(ctx context.Context, name string, mnt Mount) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("Mount", name, mnt)

	if err, ok := m.Errors["Mount"]; ok {
		return err
	}

	m.Mounts[name] = append(m.Mounts[name], mnt.Target)
	return nil
}

// Unmount removes a recorded mount
func (m *MockBackend) Unmount(ctx context.Context, name string, target string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("Unmount", name, target)

	if err, ok := m.Errors["Unmount"]; ok {
		return err
	}

	targets := m.Mounts[name]
	for i, t := range targets {
		if t == target {
			m.Mounts[name] = append(targets[:i], targets[i+1:]...)
			break
		}
	}
	return nil
}

// PushFile records a pushed file
func (m *MockBackend) PushFile(ctx context.Context, name, src, dst string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("PushFile", name, src, dst)

	if err, ok := m.Errors["PushFile"]; ok {
		return err
	}
	return nil
}

// PullFile records a pulled file
func (m *MockBackend) PullFile(ctx context.Context, name, src, dst string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("PullFile", name, src, dst)

	if err, ok := m.Errors["PullFile"]; ok {
		return err
	}
	return nil
}

// List returns all mock instances
func (m *MockBackend) List(ctx context.Context) ([]*InstanceInfo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if err, ok := m.Errors["List"]; ok {
		return nil, err
	}

	instances := make([]*InstanceInfo, 0, len(m.Instances))
	for _, info := range m.Instances {
		copied := *info
		instances = append(instances, &copied)
	}
	return instances, nil
}

var _ Backend = (*MockBackend)(nil)
