// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the application to function:
//
//   - LLMService: Text generation for questions, answers and the comparison product
//   - TemplateSource: Page template definitions
//   - DocumentWriter: Atomic persistence of the three output documents
//   - ConfigStore: Application configuration
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - PromptStore: User-editable prompts. Without it, built-in prompts are used.
//   - RunStore: Run history. Without it, runs are not recorded.
//   - AIConfigValidator: Connectivity checks when changing provider settings.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
