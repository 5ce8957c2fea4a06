package main

import (
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/filmsfather/CampusWoodieVer2/core/class"
	"github.com/filmsfather/CampusWoodieVer2/core/user"
)

func (cli *commandLine) addUserCmd() *cobra.Command {
	var nu user.NewUser
	cmd := &cobra.Command{
		Use:   "adduser",
		Short: "Create a user",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := nu.Validate(ctx, cli.validate, cli.usrSvc); err != nil {
				return cli.explain(err)
			}
			usr, err := cli.usrSvc.Create(ctx, nu)
			if err != nil {
				return errors.Wrap(err, "creating user")
			}
			cli.printf("user %s created: %s\n", usr.Name, usr.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&nu.Name, "name", "", "full name")
	cmd.Flags().StringVar(&nu.Email, "email", "", "email address, used for notifications")
	cmd.Flags().StringVar(&nu.Role, "role", user.RoleStudent, "one of student, teacher, admin")
	return cmd
}

func (cli *commandLine) addClassCmd() *cobra.Command {
	var nc class.NewClass
	cmd := &cobra.Command{
		Use:   "addclass",
		Short: "Create a class",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := nc.Validate(ctx, cli.validate, cli.classSvc); err != nil {
				return cli.explain(err)
			}
			cls, err := cli.classSvc.Create(ctx, nc)
			if err != nil {
				return errors.Wrap(err, "creating class")
			}
			cli.printf("class %s created: %s\n", cls.Name, cls.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&nc.Name, "name", "", "class name")
	return cmd
}

func (cli *commandLine) enrollCmd() *cobra.Command {
	var className, email string
	cmd := &cobra.Command{
		Use:   "enroll",
		Short: "Add a student to a class",
		RunE: func(cmd *cobra.Command, args []string) error {
			if className == "" || email == "" {
				_ = cmd.Help()
				return errHelp
			}
			ctx := cmd.Context()
			cls, err := cli.classSvc.GetByName(ctx, className)
			if err != nil {
				return errors.Wrap(err, "getting class")
			}
			usr, err := cli.usrSvc.GetByEmail(ctx, email)
			if err != nil {
				return errors.Wrap(err, "getting student")
			}
			if err = cli.classSvc.Enroll(ctx, cls.ID, usr.ID); err != nil {
				return cli.explain(errors.Wrap(err, "enrolling student"))
			}
			cli.printf("%s enrolled in %s\n", usr.Name, cls.Name)
			return nil
		},
	}
	cmd.Flags().StringVar(&className, "class", "", "class name")
	cmd.Flags().StringVar(&email, "email", "", "student email")
	return cmd
}
