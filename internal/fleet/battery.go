package fleet

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"droneMedicalDelivery/internal/apperr"
	"droneMedicalDelivery/internal/audit"
	"droneMedicalDelivery/models"
	"droneMedicalDelivery/repository"
)

// BatteryReading is one drone's battery state at sweep time.
type BatteryReading struct {
	DroneID      string             `json:"drone_id"`
	SerialNumber string             `json:"serial_number"`
	BatteryLevel float64            `json:"battery_level"`
	Status       models.DroneStatus `json:"status"`
	IsLowBattery bool               `json:"is_low_battery"`
}

// SweepSummary aggregates one battery sweep.
type SweepSummary struct {
	TotalDrones      int              `json:"total_drones"`
	LowBatteryCount  int              `json:"low_battery_count"`
	LowBatteryDrones []BatteryReading `json:"low_battery_drones"`
}

// BatteryMonitor periodically checks every active drone's battery level
// and reports the result to the activity sink. It is a background task:
// sweep failures are logged and emitted, never raised.
type BatteryMonitor struct {
	drones   repository.DroneRepositoryI
	sink     audit.Sink
	logger   *zap.Logger
	interval time.Duration
	timeout  time.Duration
	done     chan struct{}
}

func NewBatteryMonitor(drones repository.DroneRepositoryI, sink audit.Sink, logger *zap.Logger, interval, timeout time.Duration) *BatteryMonitor {
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	if timeout <= 0 {
		timeout = time.Minute
	}
	if sink == nil {
		sink = audit.NopSink{}
	}
	return &BatteryMonitor{
		drones:   drones,
		sink:     sink,
		logger:   logger,
		interval: interval,
		timeout:  timeout,
		done:     make(chan struct{}),
	}
}

// Start launches the periodic sweep. It returns immediately; the loop
// stops when ctx is cancelled. Wait blocks until the loop has exited.
func (m *BatteryMonitor) Start(ctx context.Context) {
	go func() {
		defer close(m.done)
		ticker := time.NewTicker(m.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				sweepCtx, cancel := context.WithTimeout(ctx, m.timeout)
				if _, err := m.RunSweep(sweepCtx); err != nil {
					m.logger.Error("battery sweep failed", zap.Error(err))
				}
				cancel()
			}
		}
	}()
}

// Wait blocks until the sweep loop has stopped.
func (m *BatteryMonitor) Wait() {
	<-m.done
}

// RunSweep checks all active drones once and emits a summary activity
// event. On failure it emits a BATTERY_CHECK_ERROR event and returns the
// error for the caller's logging; the scheduler never aborts on it.
func (m *BatteryMonitor) RunSweep(ctx context.Context) (*SweepSummary, error) {
	m.logger.Info("starting battery level sweep")

	drones, err := m.drones.ListActive(ctx)
	if err != nil {
		m.sink.Emit(ctx, audit.Event{
			Action:      "BATTERY_CHECK_ERROR",
			Description: "Battery check task failed",
			Feedback:    map[string]any{"error": err.Error()},
			Identity:    audit.SystemIdentity,
			Owner:       audit.SystemIdentity,
			What:        "/system/battery-check",
		})
		return nil, err
	}

	summary := &SweepSummary{TotalDrones: len(drones)}
	for i := range drones {
		d := &drones[i]
		reading := BatteryReading{
			DroneID:      d.ID,
			SerialNumber: d.SerialNumber,
			BatteryLevel: d.BatteryCapacity,
			Status:       d.Status,
			IsLowBattery: d.BatteryCapacity < models.MinBatteryForLoading,
		}
		if reading.IsLowBattery {
			summary.LowBatteryCount++
			summary.LowBatteryDrones = append(summary.LowBatteryDrones, reading)
			m.logger.Warn("low battery detected",
				zap.String("serial_number", d.SerialNumber),
				zap.Float64("battery", d.BatteryCapacity))
		}
	}

	m.sink.Emit(ctx, audit.Event{
		Action: "BATTERY_CHECK",
		Description: fmt.Sprintf("Periodic battery check completed - %d drones checked, %d with low battery",
			summary.TotalDrones, summary.LowBatteryCount),
		Feedback: summary,
		Identity: audit.SystemIdentity,
		Owner:    audit.SystemIdentity,
		What:     "/system/battery-check",
	})

	m.logger.Info("battery sweep completed",
		zap.Int("total", summary.TotalDrones),
		zap.Int("low_battery", summary.LowBatteryCount))
	return summary, nil
}

// CheckOne performs an on-demand battery check for a single drone,
// attributed to the calling actor.
func (m *BatteryMonitor) CheckOne(ctx context.Context, droneID string, actor audit.Actor) (*BatteryReading, error) {
	drone, err := m.drones.GetByID(ctx, droneID)
	if err != nil {
		return nil, apperr.System(err)
	}
	if drone == nil {
		return nil, apperr.NotFoundf("Drone not found")
	}
	reading := &BatteryReading{
		DroneID:      drone.ID,
		SerialNumber: drone.SerialNumber,
		BatteryLevel: drone.BatteryCapacity,
		Status:       drone.Status,
		IsLowBattery: drone.BatteryCapacity < models.MinBatteryForLoading,
	}
	m.sink.Emit(ctx, audit.Event{
		Action:      "MANUAL_BATTERY_CHECK",
		Description: "Manual battery check for drone " + drone.SerialNumber,
		ActionData:  map[string]any{"droneId": drone.ID, "serialNumber": drone.SerialNumber},
		Feedback:    reading,
		Identity:    actor.Identity(),
		Owner:       actor.Owner(),
		What:        "/drones/" + drone.ID + "/battery",
		IPAddress:   actor.IPAddress,
		UserAgent:   actor.UserAgent,
	})
	return reading, nil
}
