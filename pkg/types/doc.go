// Package types defines the cell model, the Medium and Snapshotter
// interfaces, configuration, and the standard error values shared by every
// cellbuf package.
//
// A medium is a grid of cells. Each cell holds one CellState, and each valid
// CellState stands for exactly one byte value. Offsets into a region map onto
// grid coordinates (Address) in groups of SlotsPerGroup cells.
package types
