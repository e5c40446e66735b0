package drawer

import (
	"time"

	"github.com/pkg/errors"

	"github.com/askiada/go-dataprep/pkg/dataprep/measure"
	"github.com/askiada/go-dataprep/pkg/dataprep/model"
	"github.com/askiada/go-dataprep/pkg/dataprep/parameterization"
)

// BindingLister lists the parameter bindings drawn next to the steps. A
// *parameterization.Parameterization satisfies it.
type BindingLister interface {
	Bindings() []parameterization.BindingInfo
}

type actionDrawer struct {
	Drawer
	m         measure.Measure
	bindings  BindingLister
	startTime time.Time
	last      *model.StepInfo
}

func (ad *actionDrawer) New() error {
	err := ad.AddStep(model.StartStep.Name)
	if err != nil {
		return errors.Wrap(err, "unable to add start step to drawer")
	}

	err = ad.AddStep(model.EndStep.Name)
	if err != nil {
		return errors.Wrap(err, "unable to add end step to drawer")
	}

	ad.startTime = time.Now()
	ad.last = model.StartStep

	return nil
}

func (ad *actionDrawer) PrepareStep(parentStep, step *model.StepInfo) error {
	err := ad.AddStep(step.Name)
	if err != nil {
		return err
	}

	err = ad.AddLink(parentStep.Name, step.Name)
	if err != nil {
		return err
	}

	ad.last = step

	return ad.addBindings(step)
}

func (ad *actionDrawer) addBindings(step *model.StepInfo) error {
	if ad.bindings == nil || step.Params == nil {
		return nil
	}

	for _, b := range ad.bindings.Bindings() {
		if b.Object != step.Params {
			continue
		}

		err := ad.AddParameter(b.Name)
		if err != nil {
			return err
		}

		err = ad.AddBinding(b.Name, step.Name, b.Chain.String())
		if err != nil {
			return err
		}
	}

	return nil
}

func (ad *actionDrawer) OnStepOutput(*model.StepInfo, time.Duration, time.Duration, int) error {
	return nil
}

func (ad *actionDrawer) Finish() error {
	err := ad.AddLink(ad.last.Name, model.EndStep.Name)
	if err != nil {
		return errors.Wrap(err, "unable to link end step")
	}

	err = ad.SetTotalTime(model.EndStep.Name, ad.startTime)
	if err != nil {
		return errors.Wrap(err, "unable to set total time")
	}

	if ad.m != nil {
		err = ad.AddMeasure(ad.m)
		if err != nil {
			return errors.Wrap(err, "unable to add measure")
		}
	}

	err = ad.Draw()
	if err != nil {
		return errors.Wrap(err, "unable to draw action")
	}

	return nil
}

// ActionDrawer draws the action every time it runs. measure and bindings are
// optional.
func ActionDrawer(drawer Drawer, measure measure.Measure, bindings BindingLister) model.ActionOption {
	return &actionDrawer{Drawer: drawer, m: measure, bindings: bindings}
}
