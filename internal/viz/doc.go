// Package viz renders thermo output for the terminal: lipgloss styles, a
// styled diagnostic logger, column plots and sparklines.
package viz
