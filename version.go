package main

// Version is the scd release. It is kept current by running scd on this
// repository (see .scd.yaml).
var Version = "0.1.0"
