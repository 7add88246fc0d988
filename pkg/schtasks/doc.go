// Package schtasks is a typed front end over the Windows "schtasks" utility.
//
// It builds task-definition XML for creation, drives the utility as a
// subprocess, parses its verbose CSV query output, and implements the
// idempotent self-scheduling protocol (Ensure) that lets a program register
// its own recurring invocation the first time it is run by hand.
//
// The package keeps no task state: the OS scheduler stays authoritative.
// Every task it creates lives under the \datalys2 folder so it can be listed
// and deleted without touching unrelated jobs.
package schtasks
