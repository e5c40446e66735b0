// Package dataprep runs data preparation actions over a working set of scene
// objects.
//
// An Action is an ordered list of steps. Operations mutate the working set
// through an OperationContext, filters narrow or reorder it. After every step
// the pending changes are reconciled into the run Context: removed and deleted
// objects leave the selection, added objects join it, and every asset that was
// added or modified is rebuilt once. A Recipe groups actions with a shared
// parameterization whose values are applied onto duplicated actions before they
// run.
package dataprep
