package drawer

import (
	"fmt"
	"io"
	"os"
	"sort"
	"text/template"
	"time"

	"github.com/dominikbraun/graph"
	"github.com/pkg/errors"
	"gopkg.in/go-playground/colors.v1" //nolint

	"github.com/askiada/go-dataprep/pkg/dataprep/measure"
)

const parameterPrefix = "parameter: "

// DOTDrawer builds a graph of steps and parameters and renders it in the DOT
// language.
type DOTDrawer struct {
	graph graph.Graph[string, string]
	steps map[string]struct{}
	open  func() (io.WriteCloser, error)
}

// NewFileDrawer creates a drawer writing to fileName on every Draw.
func NewFileDrawer(fileName string) *DOTDrawer {
	return newDOTDrawer(func() (io.WriteCloser, error) {
		file, err := os.Create(fileName)
		if err != nil {
			return nil, errors.Wrapf(err, "unable to create file %s", fileName)
		}

		return file, nil
	})
}

// NewDOTDrawer creates a drawer writing to w.
func NewDOTDrawer(w io.Writer) *DOTDrawer {
	return newDOTDrawer(func() (io.WriteCloser, error) {
		return nopCloser{w}, nil
	})
}

func newDOTDrawer(open func() (io.WriteCloser, error)) *DOTDrawer {
	return &DOTDrawer{
		graph: graph.New(graph.StringHash, graph.Directed()),
		steps: make(map[string]struct{}),
		open:  open,
	}
}

type nopCloser struct {
	io.Writer
}

func (nopCloser) Close() error { return nil }

func (d *DOTDrawer) AddStep(name string) error {
	err := d.graph.AddVertex(name)
	if err != nil && !errors.Is(err, graph.ErrVertexAlreadyExists) {
		return errors.Wrap(err, "unable to add vertex")
	}

	d.steps[name] = struct{}{}

	return nil
}

func (d *DOTDrawer) AddParameter(name string) error {
	err := d.graph.AddVertex(parameterPrefix+name, graph.VertexAttribute("shape", "box"))
	if err != nil && !errors.Is(err, graph.ErrVertexAlreadyExists) {
		return errors.Wrap(err, "unable to add parameter vertex")
	}

	return nil
}

func (d *DOTDrawer) AddLink(parentName, childName string) error {
	err := d.graph.AddEdge(parentName, childName)
	if err != nil && !errors.Is(err, graph.ErrEdgeAlreadyExists) {
		return errors.Wrapf(err, "unable to add edge from %s to %s", parentName, childName)
	}

	return nil
}

func (d *DOTDrawer) AddBinding(paramName, stepName, chain string) error {
	err := d.graph.AddEdge(parameterPrefix+paramName, stepName,
		graph.EdgeAttribute("label", chain),
		graph.EdgeAttribute("style", "dashed"),
	)
	if err != nil && !errors.Is(err, graph.ErrEdgeAlreadyExists) {
		return errors.Wrapf(err, "unable to bind %s to %s", paramName, stepName)
	}

	return nil
}

func (d *DOTDrawer) Draw() error {
	w, err := d.open()
	if err != nil {
		return err
	}

	err = dot(d.graph, w)
	if err != nil {
		_ = w.Close()

		return errors.Wrap(err, "unable to render dot")
	}

	return errors.Wrap(w.Close(), "unable to close dot output")
}

func (d *DOTDrawer) SetTotalTime(stepName string, startTime time.Time) error {
	_, properties, err := d.graph.VertexWithProperties(stepName)
	if err != nil {
		return errors.Wrapf(err, "unable to get %s vertex properties", stepName)
	}

	properties.Attributes["xlabel"] = round(time.Since(startTime)).String()

	return nil
}

const maxRGB = 240

// AddMeasure labels every step with its average durations and colours the link
// entering it from blue (fastest) to red (slowest).
func (d *DOTDrawer) AddMeasure(msr measure.Measure) error {
	metrics := msr.AllMetrics()

	var minValue, maxValue time.Duration

	first := true

	for name, mt := range metrics {
		if _, ok := d.steps[name]; !ok || mt.Runs() == 0 {
			continue
		}

		avg := mt.AVGDuration()
		if first || avg < minValue {
			minValue = avg
		}

		if first || avg > maxValue {
			maxValue = avg
		}

		first = false
	}

	for name, mt := range metrics {
		if _, ok := d.steps[name]; !ok || mt.Runs() == 0 {
			continue
		}

		fraction := 1.0
		if maxValue > minValue {
			fraction = float64(mt.AVGDuration()-minValue) / float64(maxValue-minValue)
		}

		colour, err := colors.RGB(uint8(maxRGB*fraction), 0, uint8(maxRGB-maxRGB*fraction)) //nolint
		if err != nil {
			return errors.Wrap(err, "unable to get colour")
		}

		err = d.updateMetric(name, mt, colour.ToHEX().String())
		if err != nil {
			return errors.Wrap(err, "unable to update metrics")
		}
	}

	return nil
}

func (d *DOTDrawer) updateMetric(name string, mt measure.Metric, colour string) error {
	_, properties, err := d.graph.VertexWithProperties(name)
	if err != nil {
		return errors.Wrap(err, "unable to get vertex properties")
	}

	properties.Attributes["xlabel"] = fmt.Sprintf("%s, reconcile: %s, selected: %d",
		mt.AVGDuration(), mt.AVGReconcileDuration(), mt.LastSelected())

	predecessors, err := d.graph.PredecessorMap()
	if err != nil {
		return errors.Wrap(err, "unable to get predecessors")
	}

	for parent := range predecessors[name] {
		if _, ok := d.steps[parent]; !ok {
			continue
		}

		err := d.graph.UpdateEdge(parent, name,
			graph.EdgeAttribute("color", colour),
			graph.EdgeAttribute("label", mt.AVGDuration().String()),
			graph.EdgeAttribute("fontcolor", "blue"),
		)
		if err != nil {
			return errors.Wrap(err, "unable to update edge")
		}
	}

	return nil
}

func round(d time.Duration) time.Duration {
	switch {
	case d > time.Second:
		return d.Round(time.Millisecond)
	case d > time.Millisecond:
		return d.Round(time.Microsecond)
	default:
		return d
	}
}

//nolint:lll //this is a template
const dotTemplate = `strict {{.GraphType}} {
	{{range $k, $v := .Attributes}}
		{{$k}}="{{$v}}";
	{{end}}
	{{range $s := .Statements}}
		"{{.Source}}" {{if .Target}}{{$.EdgeOperator}} "{{.Target}}" [ {{range $k, $v := .EdgeAttributes}}{{$k}}="{{$v}}", {{end}} weight={{.EdgeWeight}} ]{{else}}[ {{range $k, $v := .HTMLAttributes}}{{$k}}={{$v}}, {{end}} {{range $k, $v := .SourceAttributes}}{{$k}}="{{$v}}", {{end}} weight={{.SourceWeight}} ]{{end}};
	{{end}}
	}
	`

type description struct {
	GraphType    string
	Attributes   map[string]string
	EdgeOperator string
	Statements   []statement
}

type statement struct {
	Source           string
	Target           string
	SourceAttributes map[string]string
	HTMLAttributes   map[string]string
	EdgeAttributes   map[string]string
	SourceWeight     int
	EdgeWeight       int
}

func dot(g graph.Graph[string, string], wrt io.Writer, options ...func(*description)) error {
	desc, err := generateDOT(g, options...)
	if err != nil {
		return errors.Wrap(err, "failed to generate DOT description")
	}

	return renderDOT(wrt, desc)
}

// GraphAttribute sets a graph level DOT attribute.
func GraphAttribute(key, value string) func(*description) {
	return func(d *description) {
		d.Attributes[key] = value
	}
}

// generateDOT lists vertices then their edges in name order so that the output
// is stable.
func generateDOT(gra graph.Graph[string, string], options ...func(*description)) (description, error) {
	desc := description{
		GraphType:    "graph",
		Attributes:   make(map[string]string),
		EdgeOperator: "--",
		Statements:   make([]statement, 0),
	}

	for _, option := range options {
		option(&desc)
	}

	if gra.Traits().IsDirected {
		desc.GraphType = "digraph"
		desc.EdgeOperator = "->"
	}

	adjacencyMap, err := gra.AdjacencyMap()
	if err != nil {
		return desc, errors.Wrap(err, "unable to get adjacency map")
	}

	for _, vertex := range sortedKeys(adjacencyMap) {
		_, sourceProperties, err := gra.VertexWithProperties(vertex)
		if err != nil {
			return desc, errors.Wrap(err, "unable to get vertex properties")
		}

		sourceAttributes := make(map[string]string, len(sourceProperties.Attributes))
		htmlAttributes := make(map[string]string)

		for k, v := range sourceProperties.Attributes {
			if k == "xlabel" {
				htmlAttributes["label"] = fmt.Sprintf(`<%s <BR /> <FONT POINT-SIZE="12">%s</FONT>>`, vertex, v)

				continue
			}

			sourceAttributes[k] = v
		}

		desc.Statements = append(desc.Statements, statement{
			Source:           vertex,
			SourceWeight:     sourceProperties.Weight,
			SourceAttributes: sourceAttributes,
			HTMLAttributes:   htmlAttributes,
		})

		adjacencies := adjacencyMap[vertex]
		for _, adjacency := range sortedKeys(adjacencies) {
			edge := adjacencies[adjacency]
			desc.Statements = append(desc.Statements, statement{
				Source:         vertex,
				Target:         adjacency,
				EdgeWeight:     edge.Properties.Weight,
				EdgeAttributes: edge.Properties.Attributes,
			})
		}
	}

	return desc, nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}

	sort.Strings(keys)

	return keys
}

func renderDOT(wrt io.Writer, desc description) error {
	tpl, err := template.New("dotTemplate").Parse(dotTemplate)
	if err != nil {
		return errors.Wrap(err, "failed to parse template")
	}

	err = tpl.Execute(wrt, desc)
	if err != nil {
		return errors.Wrap(err, "unable to execute template")
	}

	return nil
}

var _ Drawer = (*DOTDrawer)(nil)
