// Package circuitbreaker 熔断器
//
// 状态机：
//
//	CLOSED ──连续失败达到阈值──▶ OPEN ──Timeout到期──▶ HALF_OPEN
//	   ▲                                                  │
//	   └──────────────────试探请求成功─────────────────────┘
//	                    (试探失败则回到OPEN)
//
// 图书目录用它保护事件发布：RabbitMQ不可用时快速失败，
// 业务写操作不被消息队列拖慢。
//
// 使用示例:
//
//	cb := circuitbreaker.NewCircuitBreaker("mq-publisher", circuitbreaker.Config{
//	    MaxRequests: 1,
//	    Timeout:     30 * time.Second,
//	})
//	err := cb.ExecuteContext(ctx, func(ctx context.Context) error {
//	    return publisher.Publish(ctx, exchange, key, payload)
//	})
//	if errors.Is(err, circuitbreaker.ErrOpenState) {
//	    // 熔断中，请求未发出
//	}
package circuitbreaker

import (
	"context"
	"errors"
	"sync"
	"time"
)

// State 熔断器状态
type State int

const (
	StateClosed   State = iota // 关闭：请求正常通过
	StateOpen                  // 打开：请求直接失败
	StateHalfOpen              // 半开：放行少量试探请求
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "CLOSED"
	case StateOpen:
		return "OPEN"
	case StateHalfOpen:
		return "HALF_OPEN"
	default:
		return "UNKNOWN"
	}
}

// DefaultConsecutiveFailures 未配置ReadyToTrip时的熔断阈值
const DefaultConsecutiveFailures = 5

// Config 熔断器配置
type Config struct {
	// MaxRequests 半开状态允许的试探请求数，0按1处理
	MaxRequests uint32

	// Interval 关闭状态下统计窗口长度，到期清零计数；0表示不清零
	Interval time.Duration

	// Timeout 打开状态持续时间，到期进入半开；0按60秒处理
	Timeout time.Duration

	// ReadyToTrip 关闭状态下每次失败后调用，返回true则熔断
	// nil时连续失败DefaultConsecutiveFailures次熔断
	ReadyToTrip func(counts Counts) bool

	// IsSuccessful 判断请求结果是否计为成功，nil时只有err==nil算成功
	IsSuccessful func(err error) bool
}

// Counts 统计窗口内的请求计数
type Counts struct {
	Requests             uint32 // 总请求数
	TotalSuccesses       uint32 // 总成功数
	TotalFailures        uint32 // 总失败数
	ConsecutiveSuccesses uint32 // 连续成功数
	ConsecutiveFailures  uint32 // 连续失败数
}

// FailureRate 失败率
func (c *Counts) FailureRate() float64 {
	if c.Requests == 0 {
		return 0
	}
	return float64(c.TotalFailures) / float64(c.Requests)
}

func (c *Counts) reset() {
	*c = Counts{}
}

func (c *Counts) onSuccess() {
	c.TotalSuccesses++
	c.ConsecutiveSuccesses++
	c.ConsecutiveFailures = 0
}

func (c *Counts) onFailure() {
	c.TotalFailures++
	c.ConsecutiveFailures++
	c.ConsecutiveSuccesses = 0
}

// CircuitBreaker 熔断器，并发安全
type CircuitBreaker struct {
	name         string
	maxRequests  uint32
	interval     time.Duration
	timeout      time.Duration
	readyToTrip  func(counts Counts) bool
	isSuccessful func(err error) bool

	mu            sync.Mutex
	state         State
	generation    uint64 // 每次状态切换递增，丢弃旧状态下发起的请求结果
	counts        Counts
	expiry        time.Time
	onStateChange func(name string, from State, to State)
	now           func() time.Time
}

// ErrOpenState 熔断器打开（或半开状态试探名额已满）
var ErrOpenState = errors.New("circuit breaker is open")

// NewCircuitBreaker 创建熔断器
func NewCircuitBreaker(name string, config Config) *CircuitBreaker {
	cb := &CircuitBreaker{
		name:         name,
		maxRequests:  config.MaxRequests,
		interval:     config.Interval,
		timeout:      config.Timeout,
		readyToTrip:  config.ReadyToTrip,
		isSuccessful: config.IsSuccessful,
		state:        StateClosed,
		now:          time.Now,
	}
	if cb.maxRequests == 0 {
		cb.maxRequests = 1
	}
	if cb.timeout <= 0 {
		cb.timeout = 60 * time.Second
	}
	if cb.readyToTrip == nil {
		cb.readyToTrip = func(counts Counts) bool {
			return counts.ConsecutiveFailures >= DefaultConsecutiveFailures
		}
	}
	if cb.isSuccessful == nil {
		cb.isSuccessful = func(err error) bool { return err == nil }
	}
	cb.resetExpiry(cb.now())
	return cb
}

// Name 熔断器名称
func (cb *CircuitBreaker) Name() string {
	return cb.name
}

// SetStateChangeCallback 设置状态变化回调
// 回调在持有锁时调用，不能再调用熔断器方法
func (cb *CircuitBreaker) SetStateChangeCallback(fn func(name string, from State, to State)) {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.onStateChange = fn
}

// Execute 通过熔断器执行请求
func (cb *CircuitBreaker) Execute(req func() error) error {
	return cb.ExecuteContext(context.Background(), func(context.Context) error {
		return req()
	})
}

// ExecuteContext 通过熔断器执行请求
// 调用方取消ctx导致的错误不计入失败，避免客户端断开触发熔断
func (cb *CircuitBreaker) ExecuteContext(ctx context.Context, req func(ctx context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	generation, err := cb.beforeRequest()
	if err != nil {
		return err
	}

	err = req(ctx)
	if err != nil && ctx.Err() != nil && errors.Is(err, ctx.Err()) {
		cb.afterRequest(generation, true)
		return err
	}
	cb.afterRequest(generation, cb.isSuccessful(err))
	return err
}

func (cb *CircuitBreaker) beforeRequest() (uint64, error) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	state, generation := cb.currentState(cb.now())
	switch {
	case state == StateOpen:
		return generation, ErrOpenState
	case state == StateHalfOpen && cb.counts.Requests >= cb.maxRequests:
		return generation, ErrOpenState
	}

	cb.counts.Requests++
	return generation, nil
}

func (cb *CircuitBreaker) afterRequest(before uint64, success bool) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	now := cb.now()
	state, generation := cb.currentState(now)
	if generation != before {
		return
	}

	if success {
		cb.counts.onSuccess()
		// 半开状态试探请求全部成功才恢复
		if state == StateHalfOpen && cb.counts.ConsecutiveSuccesses >= cb.maxRequests {
			cb.setState(StateClosed, now)
		}
		return
	}

	cb.counts.onFailure()
	switch state {
	case StateClosed:
		if cb.readyToTrip(cb.counts) {
			cb.setState(StateOpen, now)
		}
	case StateHalfOpen:
		cb.setState(StateOpen, now)
	}
}

// currentState 处理到期的状态切换
func (cb *CircuitBreaker) currentState(now time.Time) (State, uint64) {
	switch cb.state {
	case StateClosed:
		if !cb.expiry.IsZero() && cb.expiry.Before(now) {
			cb.counts.reset()
			cb.resetExpiry(now)
		}
	case StateOpen:
		if cb.expiry.Before(now) {
			cb.setState(StateHalfOpen, now)
		}
	}
	return cb.state, cb.generation
}

func (cb *CircuitBreaker) setState(state State, now time.Time) {
	if cb.state == state {
		return
	}

	prev := cb.state
	cb.state = state
	cb.generation++
	cb.counts.reset()

	switch state {
	case StateClosed:
		cb.resetExpiry(now)
	case StateOpen:
		cb.expiry = now.Add(cb.timeout)
	case StateHalfOpen:
		cb.expiry = time.Time{}
	}

	if cb.onStateChange != nil {
		cb.onStateChange(cb.name, prev, state)
	}
}

func (cb *CircuitBreaker) resetExpiry(now time.Time) {
	if cb.interval > 0 {
		cb.expiry = now.Add(cb.interval)
	} else {
		cb.expiry = time.Time{}
	}
}

// State 当前状态
func (cb *CircuitBreaker) State() State {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	state, _ := cb.currentState(cb.now())
	return state
}

// Counts 当前统计窗口的计数
func (cb *CircuitBreaker) Counts() Counts {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.counts
}
