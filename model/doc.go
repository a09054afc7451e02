// Package model groups the data types shared between the kernel, the
// services and user programs: process states and events (proc), system
// call identifiers (sys) and the process table snapshot layout (pstat).
package model
