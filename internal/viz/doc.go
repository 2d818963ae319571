// Package viz holds the terminal styling shared by the simulator: the LCD
// panel look, LED indicators, the level bar and the level sparkline.
package viz
