// Package ui contains the Bubble Tea program that shows the cluster pages and
// their popups. The Model type focuses on message orchestration while helpers
// own navigation, menus, edits, mouse input and rendering.
//
// Message flow:
//   - Bubble Tea invokes Model.Update with incoming messages, which are routed
//     through a typed handler registry so each tea.Msg is handled by a focused
//     function.
//   - Key presses go to the table, the open menu, the filter prompt or the
//     edit prompt depending on Mode.
//   - Menu actions run through the internal/ui/command bus and report back
//     with menu.ActionResult.
//
// State ownership:
//   - Every page owns a table.View over its own row store, refilled from the
//     state cache by pages.Book.
//   - Popups live in a popup.Registry whose workers refresh them in the
//     background and report through PopupRefreshedMsg.
//   - Menu levels live in internal/ui/state.Level.
//
// Locking:
//   - Popup workers, page refreshes and edit sessions serialise on one shared
//     lock. While an edit is open the model never takes the lock itself:
//     backend events are queued and pages are marked stale until the edit
//     ends.
package ui
