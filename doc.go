// Package autostate provides state managers for UI components whose
// fields can be controlled by a parent or left to the component.
//
// A Manager (package core) holds a state and the actions that change
// it.  Package autocontrol reconciles a component's props with its
// Manager's state, and package bridge keeps one Manager per owning
// component instance.  Some command-line tools are in cmd.
package autostate
