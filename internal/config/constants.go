package config

import "time"

const AppName = "glyph"
const ConfigDirName = "glyph"
const DefaultConfigFileName = "config.toml"
const DefaultLogFileName = "glyph.log"

const StatusBarHeight = 1

const MessageTimeout = 4 * time.Second

const DefaultTabWidth = 4
const DefaultScrollOff = 3
const DefaultSystemClipboard = true
const DefaultCoalesceWindowMs = 300
const DefaultUndoLimit = 1000
