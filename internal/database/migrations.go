package database

import (
	"context"
	"fmt"
)

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id UUID PRIMARY KEY,
		email VARCHAR(255) UNIQUE NOT NULL,
		full_name VARCHAR(255) NOT NULL,
		role VARCHAR(20) NOT NULL DEFAULT 'author' CHECK (role IN ('author', 'editor', 'admin')),
		user_scope VARCHAR(20) NOT NULL DEFAULT 'external' CHECK (user_scope IN ('internal', 'external')),
		user_type VARCHAR(20) CHECK (user_type IN ('student', 'faculty', 'alumni', 'professional', 'guest')),
		bio TEXT,
		profile_image VARCHAR(500),
		department VARCHAR(255),
		company VARCHAR(255),
		created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMP WITH TIME ZONE
	)`,

	`CREATE INDEX IF NOT EXISTS idx_users_role ON users(role)`,

	// Profile rows are created from sign-up metadata by the provider. Only
	// installed when the auth schema exists, i.e. on a Supabase database.
	`DO $$
	BEGIN
		IF EXISTS (SELECT 1 FROM information_schema.schemata WHERE schema_name = 'auth') THEN
			CREATE OR REPLACE FUNCTION public.handle_new_user() RETURNS trigger
			LANGUAGE plpgsql SECURITY DEFINER SET search_path = public AS $fn$
			BEGIN
				INSERT INTO public.users (id, email, full_name, user_scope)
				VALUES (
					NEW.id,
					NEW.email,
					COALESCE(NEW.raw_user_meta_data->>'full_name', ''),
					COALESCE(NEW.raw_user_meta_data->>'user_scope', 'external')
				)
				ON CONFLICT (id) DO NOTHING;
				RETURN NEW;
			END;
			$fn$;

			DROP TRIGGER IF EXISTS on_auth_user_created ON auth.users;
			CREATE TRIGGER on_auth_user_created
				AFTER INSERT ON auth.users
				FOR EACH ROW EXECUTE FUNCTION public.handle_new_user();
		END IF;
	END
	$$`,
}

func (db *DB) Migrate(ctx context.Context) error {
	for i, migration := range migrations {
		if _, err := db.Pool.Exec(ctx, migration); err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}
	return nil
}
