// Package plotdash binds dropdown controls to chart slots over a tabular
// dataset.
//
// Usage:
//
//	tbl, err := dataset.LoadFile("penguins.csv")
//	b, err := engine.New(tbl, engine.DefaultSlots())
//
//	sel, err := b.Select("scatter", map[engine.Role]string{engine.RoleColor: "island"})
//	spec, err := b.Render("scatter", sel)
//	fig, err := figure.Build(tbl, spec)
//	err = render.Write(w, fig, render.PNG, render.DefaultSize)
//
// The server package serves the bound slots as a live dashboard, with one
// engine.Session per websocket connection.
package plotdash
