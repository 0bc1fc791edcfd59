// Package config provides configuration parsing for outlet.
//
// The configuration is stored in outlet.json at the project root. Every
// field is optional; missing fields take defaults and a missing file means
// an all-default configuration.
//
// # Configuration File Structure
//
//	{
//	  "server": {
//	    "addr": ":8080",
//	    "shutdownTimeout": "10s",
//	    "allowedOrigins": ["https://app.example.com"]
//	  },
//	  "log": {
//	    "level": "info",
//	    "format": "json"
//	  },
//	  "auth": {
//	    "loginPath": "/login",
//	    "cookieName": "outlet_session",
//	    "sessions": {
//	      "dev-token": {"id": "u1", "name": "Dev", "roles": ["admin"]}
//	    }
//	  },
//	  "publish": {
//	    "bucket": "routes",
//	    "prefix": "prod",
//	    "region": "us-east-1"
//	  }
//	}
//
// OUTLET_ADDR, OUTLET_LOG_LEVEL and OUTLET_LOG_FORMAT override the file.
//
// # Usage
//
//	cfg, err := config.LoadFromWorkingDir()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	logger := cfg.NewLogger(os.Stderr)
package config
