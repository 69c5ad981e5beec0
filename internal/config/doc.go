// Package config provides configuration parsing for Vireo projects.
//
// The configuration is stored in vireo.json at the project root. This
// package handles loading, saving, and validating configuration, and
// translating it into a live server configuration.
//
// # Configuration File Structure
//
//	{
//	  "name": "my-app",
//	  "server": {
//	    "host": "localhost",
//	    "port": 8080,
//	    "title": "My App",
//	    "maxSessions": 1000,
//	    "allowedOrigins": ["app.example.com"]
//	  },
//	  "session": {
//	    "resumeWindow": "5m",
//	    "heartbeat": "30s",
//	    "historySize": 100,
//	    "checksums": true
//	  },
//	  "log": {
//	    "level": "info",
//	    "file": "vireo.log"
//	  },
//	  "export": {
//	    "output": "dist"
//	  }
//	}
//
// All fields are optional; Load fills missing fields with defaults.
package config
