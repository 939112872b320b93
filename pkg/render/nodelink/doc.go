// Package nodelink renders containment graphs as node-link diagrams.
//
// Each entity is a box and each containment constraint an arrow labelled
// with its quantity. Forward graphs are laid out top to bottom, reverse
// graphs bottom to top, so outer bags always sit above what they hold.
//
//	dot := nodelink.ToDOT(g, nodelink.Options{Highlight: target})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// The DOT text from [ToDOT] can also be saved and fed to external Graphviz
// tools. [RenderSVG] runs Graphviz in-process through
// [github.com/goccy/go-graphviz].
package nodelink
