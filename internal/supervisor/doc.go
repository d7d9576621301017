// CineRank - Hybrid Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinerank

/*
Package supervisor runs the server's long-lived services under suture v4.

	RootSupervisor ("cinerank")
	├── DataSupervisor ("data-layer")
	│   └── ReloadService (artifact directory watcher)
	└── APISupervisor ("api-layer")
	    └── HTTPServerService

Crashed services restart with suture's backoff. Supervisor events are
logged through sutureslog, which takes the *slog.Logger produced by
logging.NewSlogLogger so they share the zerolog output.

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	tree.AddDataService(services.NewReloadService(holder, reloadCfg, logger))
	tree.AddAPIService(services.NewHTTPServerService(server, addr, timeout, logger))
	err = tree.Serve(ctx)
*/
package supervisor
