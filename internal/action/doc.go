// Package action implements the action registry: named side-effect handlers
// invoked from action strings.
//
// # Dispatch contract
//
// Registry.Run parses an action string and dispatches each command in order.
// Every command is isolated from its siblings:
//   - unknown action ids are logged and skipped, never returned as errors
//   - a handler error is logged with quest and action context, the player is
//     told that an error occurred, and the next command still runs
//   - a handler panic is recovered and treated like an error
//
// Side effects are not transactional. A later failure never rolls back an
// earlier command.
//
// Handlers may dispatch nested action strings through Env.Dispatch. The
// nesting depth travels in the context and is capped by Env.MaxDepth.
package action
