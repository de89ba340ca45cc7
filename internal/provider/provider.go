// Package provider answers configuration requests from the tooling
// consumer on behalf of the selection controller.
package provider

import (
	"context"

	"multiroot/internal/selection"
	"multiroot/internal/workspace"
)

// FolderResolver maps a file or folder URI to its workspace folder.
type FolderResolver interface {
	FolderFor(uri string) (workspace.Folder, bool)
	// FolderByNameOrURI also accepts a bare folder name.
	FolderByNameOrURI(s string) (workspace.Folder, bool)
}

// Provider implements the configuration provider contract.
type Provider struct {
	ctrl    *selection.Controller
	folders FolderResolver
}

// New creates a provider over ctrl.
func New(ctrl *selection.Controller, folders FolderResolver) *Provider {
	return &Provider{ctrl: ctrl, folders: folders}
}

// Name returns the display name.
func (p *Provider) Name() string { return Name }

// ExtensionID returns the provider id.
func (p *Provider) ExtensionID() string { return ExtensionID }

// CanProvideConfiguration reports whether the folder owning uri takes part
// in the registry. It does not look at the active slot.
func (p *Provider) CanProvideConfiguration(uri string) bool {
	folder, ok := p.folders.FolderFor(uri)
	if !ok {
		return false
	}
	return p.ctrl.CanSupply(folder.Name)
}

// ProvideConfigurations returns a configuration for every uri whose folder
// has a populated slot at the active index. Other uris are omitted.
func (p *Provider) ProvideConfigurations(ctx context.Context, uris []string) ([]SourceFileConfigurationItem, error) {
	items := []SourceFileConfigurationItem{}
	for _, uri := range uris {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		folder, ok := p.folders.FolderFor(uri)
		if !ok {
			continue
		}
		cfg, ok := p.ctrl.Resolve(folder.Name)
		if !ok {
			continue
		}
		items = append(items, SourceFileConfigurationItem{
			URI:           uri,
			Configuration: fromNamedConfig(cfg),
		})
	}
	return items, nil
}

// CanProvideBrowseConfiguration is always false: browse information is only
// provided per folder.
func (p *Provider) CanProvideBrowseConfiguration() bool { return false }

// ProvideBrowseConfiguration returns an empty workspace-wide configuration.
func (p *Provider) ProvideBrowseConfiguration() WorkspaceBrowseConfiguration {
	return WorkspaceBrowseConfiguration{BrowsePath: []string{}}
}

// CanProvideBrowseConfigurationsPerFolder is always true.
func (p *Provider) CanProvideBrowseConfigurationsPerFolder() bool { return true }

// ProvideFolderBrowseConfiguration returns the browse configuration of the
// folder named by, or owning, uri. ok is false when the active slot is empty
// or declares no browse section.
func (p *Provider) ProvideFolderBrowseConfiguration(uri string) (WorkspaceBrowseConfiguration, bool) {
	folder, ok := p.folders.FolderByNameOrURI(uri)
	if !ok {
		return WorkspaceBrowseConfiguration{}, false
	}
	cfg, ok := p.ctrl.Resolve(folder.Name)
	if !ok || !cfg.HasBrowsePaths() {
		return WorkspaceBrowseConfiguration{}, false
	}
	return browseFromNamedConfig(cfg), true
}
