package parameterization

import "github.com/askiada/go-dataprep/pkg/dataprep/model"

// Observer is told about schema migrations of a Parameterization.
type Observer interface {
	// SchemaAboutToChange runs before old is replaced.
	SchemaAboutToChange(old *model.Class)
	// SchemaChanged runs once every holder was replaced. oldToNew maps each
	// replaced holder, the canonical one included, to its replacement.
	SchemaChanged(oldToNew map[*model.Object]*model.Object)
	// ReloadValues runs after values were restored from persisted data.
	ReloadValues()
}

// AddObserver registers o.
func (p *Parameterization) AddObserver(o Observer) {
	for _, existing := range p.observers {
		if existing == o {
			return
		}
	}

	p.observers = append(p.observers, o)
}

// RemoveObserver unregisters o.
func (p *Parameterization) RemoveObserver(o Observer) {
	for i, existing := range p.observers {
		if existing == o {
			p.observers = append(p.observers[:i:i], p.observers[i+1:]...)

			return
		}
	}
}

func (p *Parameterization) notifyAboutToChange(old *model.Class) {
	for _, o := range p.observers {
		o.SchemaAboutToChange(old)
	}
}

func (p *Parameterization) notifyChanged(oldToNew map[*model.Object]*model.Object) {
	for _, o := range p.observers {
		o.SchemaChanged(oldToNew)
	}
}

func (p *Parameterization) notifyReload() {
	for _, o := range p.observers {
		o.ReloadValues()
	}
}
