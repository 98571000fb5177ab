// Package mst is a reactive, mutable tree data store: an object graph
// of models, lists, and keyed maps whose nodes are individually
// observable and snapshot-able, and whose every mutation can be
// intercepted, recorded, and replayed as a structural patch or as a
// semantic action call.
//
// Shapes are declared with package types; the bookkeeping per value
// lives in package node; mutations batch through package txn. This
// package is the thin public surface: value-based accessors that
// funnel through the owning tree node.
//
//	todo := types.NewModel("Todo").
//		Prop("title", types.String).
//		Action("setTitle", func(self *types.Model, args []any) (any, error) {
//			return nil, self.Set("title", args[0])
//		})
//	m, _ := todo.New(map[string]any{"title": "write docs"})
//	_ = mst.Protect(m)
//	stop, _ := mst.OnPatch(m, func(p patch.Patch) { log.Println(p) })
//	defer stop()
//	m.Call("setTitle", "ship it")
package mst
