// Package mcpserver exposes the configuration provider to tooling consumers
// over the Model Context Protocol.
//
// Every provider operation and user action is an MCP tool:
//
//	multiroot_can_provide_configuration            {uri}
//	multiroot_provide_configurations               {uris}
//	multiroot_provide_folder_browse_configuration  {uri}
//	multiroot_list_configurations
//	multiroot_active_configuration_name
//	multiroot_select_configuration                 {name} or {index}
//	multiroot_reload
//	multiroot_status
//
// After every reload and selection change the server broadcasts
// notifications/multiroot/didChangeCustomConfiguration and
// notifications/multiroot/didChangeCustomBrowseConfiguration. The first
// reload is additionally followed by notifications/multiroot/ready.
//
// The server speaks either stdio, for a consumer that launches it as a
// child process, or streamable-http, which the CLI commands connect to.
package mcpserver
