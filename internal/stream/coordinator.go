package stream

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/facemoji/facemoji/internal/domain"
	"github.com/facemoji/facemoji/internal/pipeline"
	"github.com/facemoji/facemoji/internal/task"
)

// Analyzer is the pipeline stage run per accepted frame.
type Analyzer interface {
	DetectAndClassify(ctx context.Context, image []byte) (*pipeline.DetectResult, error)
}

// FrameGate limits frame submissions per device. A nil gate admits everything.
type FrameGate interface {
	CheckFrameLimit(ctx context.Context, deviceID string, limit int) error
}

// Config tunes the coordinator's admission behavior.
type Config struct {
	TargetFPS  int
	FrameLimit int
}

// Coordinator owns the session registry. Session creation and destruction are
// serialized against frame dispatch through the registry mutex plus each
// session's own lock.
type Coordinator struct {
	analyzer Analyzer
	runner   *task.Runner
	gate     FrameGate
	logger   *slog.Logger

	minInterval time.Duration
	frameLimit  int

	mu       sync.Mutex
	sessions map[string]*DeviceSession
}

func NewCoordinator(analyzer Analyzer, runner *task.Runner, gate FrameGate, cfg Config, logger *slog.Logger) *Coordinator {
	fps := cfg.TargetFPS
	if fps <= 0 {
		fps = 30
	}
	return &Coordinator{
		analyzer:    analyzer,
		runner:      runner,
		gate:        gate,
		logger:      logger,
		minInterval: time.Second / time.Duration(fps),
		frameLimit:  cfg.FrameLimit,
		sessions:    make(map[string]*DeviceSession),
	}
}

// OpenSession subscribes sub to the device, creating the session on the
// first subscriber.
func (c *Coordinator) OpenSession(deviceID string, sub Subscriber) *DeviceSession {
	c.mu.Lock()
	session, ok := c.sessions[deviceID]
	if !ok {
		session = newDeviceSession(deviceID)
		c.sessions[deviceID] = session
		c.logger.Info("session created", "device_id", deviceID)
	}
	c.mu.Unlock()

	session.subscribe(sub)
	return session
}

// CloseSession unsubscribes sub and destroys the session when the last
// subscriber leaves. In-flight frame publishes become no-ops after that.
func (c *Coordinator) CloseSession(deviceID string, sub Subscriber) {
	c.mu.Lock()
	session, ok := c.sessions[deviceID]
	if ok && session.unsubscribe(sub) {
		delete(c.sessions, deviceID)
		session.close()
		c.logger.Info("session destroyed", "device_id", deviceID)
	}
	c.mu.Unlock()
}

// Session returns the live session for a device, if any.
func (c *Coordinator) Session(deviceID string) (*DeviceSession, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	session, ok := c.sessions[deviceID]
	return session, ok
}

// SubmitFrame validates, rate-checks and admits a frame, then dispatches it
// to the pipeline as an independent unit of work. Frames inside the minimum
// interval are dropped silently. Malformed frames produce an error event to
// subscribers and leave the session up.
func (c *Coordinator) SubmitFrame(ctx context.Context, deviceID string, frame Frame) error {
	c.mu.Lock()
	session, ok := c.sessions[deviceID]
	c.mu.Unlock()
	if !ok {
		return domain.ErrSessionNotFound
	}

	if frame.FrameID == "" || frame.Payload == "" {
		c.publishError(session, frame.FrameID, "frame_id and frame are required")
		return domain.ErrInvalidFrame
	}

	payload, err := base64.StdEncoding.DecodeString(frame.Payload)
	if err != nil {
		c.publishError(session, frame.FrameID, "frame payload is not valid base64")
		return domain.ErrInvalidFrame.WithError(err)
	}

	if c.gate != nil {
		if err := c.gate.CheckFrameLimit(ctx, deviceID, c.frameLimit); err != nil {
			if errors.Is(err, domain.ErrRateLimitExceeded) {
				c.publishError(session, frame.FrameID, "frame rate limit exceeded")
			}
			return err
		}
	}

	seq, accepted := session.admit(time.Now(), c.minInterval)
	if !accepted {
		return nil
	}

	taskCtx := context.WithoutCancel(ctx)
	_, err = c.runner.Submit(taskCtx, "frame:"+frame.FrameID, func(taskCtx context.Context) error {
		c.processFrame(taskCtx, session, frame.FrameID, seq, payload)
		return nil
	})
	if err != nil {
		return fmt.Errorf("dispatch frame %s: %w", frame.FrameID, err)
	}

	return nil
}

func (c *Coordinator) processFrame(ctx context.Context, session *DeviceSession, frameID string, seq uint64, payload []byte) {
	result, err := c.analyzer.DetectAndClassify(ctx, payload)
	if err != nil {
		if errors.Is(err, domain.ErrNoFaceDetected) {
			session.publish(Event{
				DeviceID:  session.deviceID,
				Type:      EventFaceDetection,
				FrameID:   frameID,
				Data:      &pipeline.DetectResult{Faces: []pipeline.FaceAnalysis{}},
				Timestamp: time.Now(),
			})
			return
		}
		c.publishError(session, frameID, err.Error())
		return
	}

	if len(result.Faces) > 0 {
		session.recordResult(seq, result.Faces[0].Face.Expression.Primary)
	}

	session.publish(Event{
		DeviceID:  session.deviceID,
		Type:      EventFaceDetection,
		FrameID:   frameID,
		Data:      result,
		Timestamp: time.Now(),
	})
}

func (c *Coordinator) publishError(session *DeviceSession, frameID, message string) {
	session.publish(Event{
		DeviceID:  session.deviceID,
		Type:      EventError,
		FrameID:   frameID,
		Data:      message,
		Timestamp: time.Now(),
	})
}
