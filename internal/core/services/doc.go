// Package services implements the driving port interfaces.
// Services contain the pipeline stages and orchestrate
// calls to driven ports (adapters).
//
// The pure content transforms live in the logic package; services add the
// LLM-backed stages, the template engine and the orchestrator around them.
package services
