package extract

// DirectiveInfo describes one Blade directive: hover documentation and
// whether its first string argument names a template.
type DirectiveInfo struct {
	Doc          string
	TakesView    bool // first argument is a view name
	TakesSection bool // first argument is a section name
}

// bladeDirectives is the recognized directive catalog. Bare @words not
// listed here are only treated as directives when followed by an
// argument list, which keeps email addresses and CSS at-rules out.
var bladeDirectives = map[string]DirectiveInfo{
	"include":       {Doc: "Include a Blade view with the current data scope.", TakesView: true},
	"includeIf":     {Doc: "Include a Blade view only if it exists.", TakesView: true},
	"includeWhen":   {Doc: "Include a Blade view when a condition holds."},
	"includeUnless": {Doc: "Include a Blade view unless a condition holds."},
	"includeFirst":  {Doc: "Include the first view that exists from an array of views."},
	"extends":       {Doc: "Extend a Blade layout.", TakesView: true},
	"component":     {Doc: "Render a class-less component view.", TakesView: true},
	"each":          {Doc: "Render a view once per element of a collection.", TakesView: true},
	"section":       {Doc: "Start a named content section.", TakesSection: true},
	"endsection":    {Doc: "End the current section."},
	"yield":         {Doc: "Display the contents of a named section.", TakesSection: true},
	"show":          {Doc: "End a section and immediately yield it."},
	"parent":        {Doc: "Append to the parent layout's section content."},
	"push":          {Doc: "Push content onto a named stack.", TakesSection: true},
	"endpush":       {Doc: "End a push block."},
	"prepend":       {Doc: "Prepend content onto a named stack.", TakesSection: true},
	"stack":         {Doc: "Render the contents of a named stack.", TakesSection: true},
	"once":          {Doc: "Render the enclosed block a single time per render cycle."},
	"if":            {Doc: "Begin a conditional block."},
	"elseif":        {Doc: "Alternate branch of a conditional block."},
	"else":          {Doc: "Fallback branch of a conditional block."},
	"endif":         {Doc: "End a conditional block."},
	"unless":        {Doc: "Begin an inverted conditional block."},
	"endunless":     {Doc: "End an inverted conditional block."},
	"isset":         {Doc: "Render when the variable is set."},
	"endisset":      {Doc: "End an @isset block."},
	"empty":         {Doc: "Render when the variable is empty."},
	"endempty":      {Doc: "End an @empty block."},
	"auth":          {Doc: "Render for authenticated users, optionally for a guard."},
	"endauth":       {Doc: "End an @auth block."},
	"guest":         {Doc: "Render for unauthenticated users."},
	"endguest":      {Doc: "End a @guest block."},
	"env":           {Doc: "Render when the app runs in the given environment."},
	"endenv":        {Doc: "End an @env block."},
	"production":    {Doc: "Render only in the production environment."},
	"endproduction": {Doc: "End a @production block."},
	"can":           {Doc: "Render when the user is authorized for an ability."},
	"endcan":        {Doc: "End a @can block."},
	"cannot":        {Doc: "Render when the user lacks an ability."},
	"endcannot":     {Doc: "End a @cannot block."},
	"foreach":       {Doc: "Loop over a collection."},
	"endforeach":    {Doc: "End a @foreach loop."},
	"forelse":       {Doc: "Loop over a collection with an @empty fallback."},
	"endforelse":    {Doc: "End a @forelse loop."},
	"for":           {Doc: "Plain for loop."},
	"endfor":        {Doc: "End a @for loop."},
	"while":         {Doc: "Loop while a condition holds."},
	"endwhile":      {Doc: "End a @while loop."},
	"break":         {Doc: "Break out of the current loop."},
	"continue":      {Doc: "Skip to the next loop iteration."},
	"php":           {Doc: "Embed raw PHP."},
	"endphp":        {Doc: "End a @php block."},
	"csrf":          {Doc: "Emit a hidden CSRF token field."},
	"method":        {Doc: "Emit a hidden HTTP method override field."},
	"vite":          {Doc: "Emit tags for Vite-built assets."},
	"error":         {Doc: "Render when a validation error exists for a field."},
	"enderror":      {Doc: "End an @error block."},
	"json":          {Doc: "Render a value as JSON."},
	"class":         {Doc: "Conditionally compile a CSS class list."},
	"style":         {Doc: "Conditionally compile inline styles."},
	"checked":       {Doc: "Emit the checked attribute when true."},
	"selected":      {Doc: "Emit the selected attribute when true."},
	"disabled":      {Doc: "Emit the disabled attribute when true."},
	"required":      {Doc: "Emit the required attribute when true."},
	"readonly":      {Doc: "Emit the readonly attribute when true."},
	"props":         {Doc: "Declare component props with defaults."},
	"aware":         {Doc: "Access parent component data."},
	"slot":          {Doc: "Begin a named slot.", TakesSection: true},
	"endslot":       {Doc: "End a slot."},
	"livewire":      {Doc: "Render a Livewire component."},
	"livewireStyles":  {Doc: "Emit Livewire style tags."},
	"livewireScripts": {Doc: "Emit Livewire script tags."},
	"lang":          {Doc: "Render a translation line."},
	"choice":        {Doc: "Render a pluralized translation line."},
	"verbatim":      {Doc: "Leave Blade echo syntax uncompiled."},
	"endverbatim":   {Doc: "End a @verbatim block."},
	"use":           {Doc: "Import a class into the template scope."},
	"inject":        {Doc: "Resolve a service from the container into a variable."},
}

// DirectiveDoc returns hover documentation for a directive name, without
// the leading @.
func DirectiveDoc(name string) (string, bool) {
	info, ok := bladeDirectives[name]
	if !ok {
		return "", false
	}
	return info.Doc, true
}
