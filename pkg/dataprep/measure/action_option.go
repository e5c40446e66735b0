package measure

import (
	"time"

	"github.com/askiada/go-dataprep/pkg/dataprep/model"
)

type actionMeasure struct {
	Measure
	start time.Time
}

func (am *actionMeasure) New() error {
	am.AddMetric(model.StartStep.Name)
	am.AddMetric(model.EndStep.Name)
	am.start = time.Now()

	return nil
}

func (am *actionMeasure) PrepareStep(_, step *model.StepInfo) error {
	am.AddMetric(step.Name)

	return nil
}

func (am *actionMeasure) OnStepOutput(step *model.StepInfo, computationDuration, reconcileDuration time.Duration, selected int) error {
	mt := am.GetMetric(step.Name)
	mt.AddDuration(computationDuration, reconcileDuration)
	mt.AddSelected(selected)

	return nil
}

func (am *actionMeasure) Finish() error {
	am.GetMetric(model.EndStep.Name).SetTotalDuration(time.Since(am.start))

	return nil
}

// ActionMeasure records per step durations and selection sizes into measure.
func ActionMeasure(measure Measure) model.ActionOption {
	return &actionMeasure{Measure: measure}
}
