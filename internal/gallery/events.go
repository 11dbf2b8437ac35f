package gallery

import (
	"vidhub/internal/bridge"
	"vidhub/internal/errors"
	"vidhub/internal/log"
	"vidhub/internal/metrics"
	"vidhub/pkg/types"
)

// HandleEvent applies one inbound worker event. Events that belong to a
// superseded import, or that break the message contract, are logged and
// discarded with prior state untouched; the returned error says why.
//
// Generation 0 means the worker did not tag the event and it is always
// accepted. Tagged progress and final events from an older generation are
// stale, and progress for a generation that already completed is late.
func (c *Controller) HandleEvent(ev bridge.Event) error {
	if ev == nil {
		return nil
	}

	var err error
	switch e := ev.(type) {
	case bridge.InputFolderChosen:
		if e.Path == "" {
			err = invalid(e, "empty folder path")
			break
		}
		c.app.SelectedSourceFolder = e.Path
		c.enterFolderSelection()

	case bridge.OutputFolderChosen:
		if e.Path == "" {
			err = invalid(e, "empty folder path")
			break
		}
		c.app.SelectedOutputFolder = e.Path
		c.enterFolderSelection()

	case bridge.ProcessingProgress:
		err = c.applyProgress(e)

	case bridge.FinalObjectReady:
		err = c.applyFinal(e)

	case bridge.WorkerExited:
		c.workerGone = true
		c.livenessSlot.Stop()
		c.markUnresponsive()
		logger := c.logger
		if e.Err != nil {
			logger = logger.WithError(e.Err)
		}
		logger.Warn("Worker went away")

	default:
		err = errors.NewBridgeError("unhandled event", ev.Name(), errors.UnknownMessage, nil)
	}

	if err != nil {
		c.discard(err)
		return err
	}
	// only accepted events count as a sign of life
	if _, exited := ev.(bridge.WorkerExited); !exited {
		c.heardFromWorker()
	}
	return nil
}

func (c *Controller) applyProgress(e bridge.ProcessingProgress) error {
	if err := c.checkGeneration(e); err != nil {
		return err
	}
	if e.Gen != 0 && e.Gen == c.completedGen {
		return stale(e, "progress after completion")
	}
	if e.Total <= 0 {
		return invalid(e, "progress total must be positive").WithContext("total", e.Total)
	}
	if e.Done < 0 || e.Done > e.Total {
		return invalid(e, "progress done must be between 0 and total").
			WithContext("done", e.Done).WithContext("total", e.Total)
	}

	c.phase = types.PhaseInProgress
	c.done, c.total = e.Done, e.Total
	c.percent = float64(e.Done) / float64(e.Total)
	return nil
}

func (c *Controller) applyFinal(e bridge.FinalObjectReady) error {
	if err := c.checkGeneration(e); err != nil {
		return err
	}

	obj := e.Object
	c.app.SelectedOutputFolder = obj.OutputDir
	c.app.SelectedSourceFolder = obj.InputDir
	c.results = append([]types.ResultEntry(nil), obj.Images...)
	c.phase = types.PhaseComplete
	if e.Gen != 0 {
		c.completedGen = e.Gen
	} else {
		c.completedGen = c.gen
	}
	c.livenessSlot.Stop()
	c.refresh()

	c.logger.With(log.F("gen", e.Gen), log.F("items", len(c.results))).Info("Import complete")
	return nil
}

// checkGeneration rejects tagged events that do not belong to the current
// import cycle
func (c *Controller) checkGeneration(ev bridge.Event) error {
	gen := ev.Generation()
	switch {
	case gen == 0:
		return nil
	case gen < c.gen:
		return stale(ev, "event from a superseded import").WithContext("current", c.gen)
	case gen > c.gen:
		return invalid(ev, "event from an unknown import").WithContext("current", c.gen)
	}
	return nil
}

// heardFromWorker clears the unresponsive state and re-arms the liveness
// timer while an import runs
func (c *Controller) heardFromWorker() {
	if c.unresponsive && !c.workerGone {
		c.unresponsive = false
		c.logger.Info("Worker responsive again")
	}
	if c.phase == types.PhaseInProgress {
		c.armLiveness()
	}
}

func (c *Controller) discard(err error) {
	reason := "invalid"
	if errors.IsStale(err) {
		reason = "stale"
	}
	metrics.GalleryEventsDiscarded.WithLabelValues(reason).Inc()
	if reason == "stale" {
		c.logger.WithError(err).Debug("Discarding event")
		return
	}
	c.logger.WithError(err).Warn("Discarding event")
}

func stale(ev bridge.Event, msg string) *errors.BridgeError {
	return errors.NewBridgeError(msg, ev.Name(), errors.StaleEvent, nil).
		WithContext("gen", ev.Generation())
}

func invalid(ev bridge.Event, msg string) *errors.BridgeError {
	return errors.NewBridgeError(msg, ev.Name(), errors.ContractViolation, nil).
		WithContext("gen", ev.Generation())
}
