// Package diorama renders a single glTF model as a small interactive 3D
// scene on [Ebitengine].
//
// A scene holds one loaded model, an ambient light, any number of
// directional and point lights, and a perspective camera that eases toward
// an orbit position driven by the pointer. Each frame is drawn through a
// fixed post-processing chain:
//
//	render -> vignette -> FXAA -> output (tone mapping, sRGB)
//
// # Quick start
//
// [Run] opens a window and drives an [App] until it is closed:
//
//	cfg, err := diorama.LoadConfig("diorama.yaml")
//	if err != nil {
//		log.Fatal(err)
//	}
//	if err := diorama.Run(ctx, cfg, diorama.WithConfigPath("diorama.yaml")); err != nil {
//		log.Fatal(err)
//	}
//
// For full control, create the [App] with [NewApp] and pass it to
// [ebiten.RunGame] yourself. Call [App.Close] when the loop ends.
//
// # Frame loop
//
// [App.Update] runs once per displayed frame. It applies results from the
// background model load and config watcher, polls the pointer, advances the
// preloader fade and steps the [FollowController]. The camera moves a fixed
// fraction of the remaining distance each frame, so motion is tied to the
// display refresh rate rather than wall time.
//
// # Rendering
//
// Ebitengine has no depth buffer, so the geometry pass projects and shades
// triangles on the CPU (Lambert lighting, linear fog), sorts them far to
// near and submits them with DrawTriangles. The remaining passes are Kage
// shaders run by the [Composer].
//
// # devMode
//
// With Config.DevMode set, light helpers are added to the scene, an FPS
// overlay is drawn, frame stats are logged at debug level and F12 saves a
// screenshot.
//
// [Ebitengine]: https://ebitengine.org
package diorama
