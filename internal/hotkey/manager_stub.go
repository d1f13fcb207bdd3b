//go:build !windows

package hotkey

func (m *Manager) startPlatform() error {
	m.log.Warn().Msg("Hotkey Engine: Global hooks not supported on this platform.")
	return nil
}
