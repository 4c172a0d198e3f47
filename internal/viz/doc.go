// Package viz renders mechanisms and runs as styled terminal text: the
// joint tree, per-joint articulated quantities, a Braille sketch of the
// current pose and sparklines of recorded signals.
package viz
